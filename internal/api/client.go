package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
	"github.com/openletters/carta/internal/session"
)

// Client talks to the letters API. Reads are public; writes require the
// bearer token, which the transport attaches automatically whenever one is
// stored.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Manager
}

// New creates an API client for the given base URL
func New(baseURL string, sessions *session.Manager) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &authTransport{base: http.DefaultTransport, tokens: sessions},
		},
		sessions: sessions,
	}
}

// letterRow is the wire shape of a letter. The API mixes naming styles
// (senderEmail vs recipient_email), normalized here into the model.
type letterRow struct {
	ID             string    `json:"id"`
	SenderEmail    string    `json:"senderEmail"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
	SignatureCount int       `json:"signatureCount"`
	IsSigned       bool      `json:"isSigned"`
}

func (r letterRow) toLetter() model.Letter {
	return model.Letter{
		ID:             r.ID,
		SenderEmail:    r.SenderEmail,
		RecipientEmail: r.RecipientEmail,
		Subject:        r.Subject,
		Body:           r.Body,
		CreatedAt:      r.CreatedAt,
		SignatureCount: r.SignatureCount,
		IsSigned:       r.IsSigned,
	}
}

// CreateLetterInput is the payload for a new letter. The sender is derived
// from the token on the server side.
type CreateLetterInput struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// ToggleResult is the authoritative post-toggle state. Callers replace their
// local copies with exactly these values, never by incrementing.
type ToggleResult struct {
	Signed         bool `json:"signed"`
	SignatureCount int  `json:"signatureCount"`
}

// ListLetters fetches letters matching the query descriptor
func (c *Client) ListLetters(ctx context.Context, d query.Descriptor) ([]model.Letter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/letters?"+d.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var rows []letterRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode letters: %w", err)
	}

	letters := make([]model.Letter, 0, len(rows))
	for _, r := range rows {
		letters = append(letters, r.toLetter())
	}
	return letters, nil
}

// GetLetter fetches a single letter by ID. Returns ErrNotFound when the
// server reports absence.
func (c *Client) GetLetter(ctx context.Context, id string) (model.Letter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/letters/"+url.PathEscape(id), nil)
	if err != nil {
		return model.Letter{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Letter{}, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return model.Letter{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return model.Letter{}, c.statusError(resp)
	}

	var row letterRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return model.Letter{}, fmt.Errorf("failed to decode letter: %w", err)
	}
	return row.toLetter(), nil
}

// CreateLetter submits a new letter. Requires an authenticated session; the
// server may reject with a cooldown message, surfaced verbatim.
func (c *Client) CreateLetter(ctx context.Context, input CreateLetterInput) (model.Letter, error) {
	resp, err := c.postJSON(ctx, "/letters", input)
	if err != nil {
		return model.Letter{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return model.Letter{}, ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Letter{}, c.statusError(resp)
	}

	var row letterRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return model.Letter{}, fmt.Errorf("failed to decode created letter: %w", err)
	}
	return row.toLetter(), nil
}

// ToggleSignature adds or removes the current user's signature on a letter
// and returns the authoritative new state.
func (c *Client) ToggleSignature(ctx context.Context, id string) (ToggleResult, error) {
	resp, err := c.postJSON(ctx, "/letters/"+url.PathEscape(id)+"/toggle-signature", nil)
	if err != nil {
		return ToggleResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return ToggleResult{}, ErrSessionExpired
	}
	if resp.StatusCode == http.StatusNotFound {
		return ToggleResult{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return ToggleResult{}, c.statusError(resp)
	}

	var result ToggleResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ToggleResult{}, fmt.Errorf("failed to decode toggle response: %w", err)
	}
	return result, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "/users/register", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.statusError(resp)
	}
	return nil
}

// Login authenticates and persists the returned token as the session
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Token == "" {
		return fmt.Errorf("login succeeded but no token was returned")
	}

	return c.sessions.SetToken(result.Token)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return resp, nil
}

// statusError turns a non-success response into the right error kind. 4xx
// bodies with a structured {error} message become ValidationErrors so the
// message reaches the user unchanged.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var structured struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error != "" {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &ValidationError{Message: structured.Error}
		}
	}

	return fmt.Errorf("server error: %s (status %d)", string(body), resp.StatusCode)
}
