package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/openletters/carta/internal/logger"
)

// tokenSource yields the raw stored token, if any
type tokenSource interface {
	Raw() (string, bool)
}

// authTransport attaches the bearer token to every outgoing request when one
// is present in storage, so the calls above it never deal with auth headers.
// It also tags each request with a correlation ID for the logs.
type authTransport struct {
	base   http.RoundTripper
	tokens tokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	reqID := uuid.NewString()[:8]
	out.Header.Set("X-Request-ID", reqID)

	if raw, ok := t.tokens.Raw(); ok {
		out.Header.Set("Authorization", "Bearer "+raw)
	}

	logger.Debug("HTTP Request",
		logger.F("id", reqID),
		logger.F("method", out.Method),
		logger.F("url", out.URL.String()))

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("id", reqID), logger.F("error", err))
		return nil, err
	}

	logger.Debug("HTTP Response",
		logger.F("id", reqID),
		logger.F("status", resp.StatusCode))
	return resp, nil
}
