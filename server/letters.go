package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/openletters/carta/internal/logger"
)

// writeCooldown is the minimum gap between letters from the same user
const writeCooldown = time.Minute

type letterResponse struct {
	ID             string `json:"id"`
	SenderEmail    string `json:"senderEmail"`
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	CreatedAt      string `json:"created_at"`
	SignatureCount int    `json:"signatureCount"`
	IsSigned       bool   `json:"isSigned"`
}

type createLetterRequest struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

func (s *Server) handleSearchLetters(c echo.Context) error {
	field := c.QueryParam("field")
	text := c.QueryParam("query")
	sortOrder := c.QueryParam("sortOrder")
	startDate := c.QueryParam("startDate")
	endDate := c.QueryParam("endDate")

	var where []string
	var args []any

	if text != "" {
		column, ok := map[string]string{
			"subject": "l.subject",
			"from":    "u.email",
			"to":      "l.recipient_email",
		}[field]
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown search field"})
		}
		where = append(where, column+" LIKE ?")
		args = append(args, "%"+text+"%")
	}
	if startDate != "" {
		where = append(where, "date(l.created_at) >= date(?)")
		args = append(args, startDate)
	}
	if endDate != "" {
		where = append(where, "date(l.created_at) <= date(?)")
		args = append(args, endDate)
	}

	order := "DESC"
	if sortOrder == "asc" {
		order = "ASC"
	}

	q := `SELECT l.id, u.email, l.recipient_email, l.subject, l.body, l.created_at,
			COUNT(sig.user_id) AS signature_count
		FROM letters l
		JOIN users u ON u.id = l.sender_id
		LEFT JOIN signatures sig ON sig.letter_id = l.id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(" GROUP BY l.id ORDER BY signature_count %s, l.created_at DESC LIMIT 100", order)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		logger.Error("letter search failed", logger.F("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load letters"})
	}
	defer rows.Close()

	letters := []letterResponse{}
	for rows.Next() {
		var l letterResponse
		if err := rows.Scan(&l.ID, &l.SenderEmail, &l.RecipientEmail, &l.Subject, &l.Body, &l.CreatedAt, &l.SignatureCount); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load letters"})
		}
		letters = append(letters, l)
	}
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load letters"})
	}

	return c.JSON(http.StatusOK, letters)
}

func (s *Server) handleGetLetter(c echo.Context) error {
	id := c.Param("id")

	var l letterResponse
	err := s.db.QueryRow(
		`SELECT l.id, u.email, l.recipient_email, l.subject, l.body, l.created_at,
			COUNT(sig.user_id)
		FROM letters l
		JOIN users u ON u.id = l.sender_id
		LEFT JOIN signatures sig ON sig.letter_id = l.id
		WHERE l.id = ?
		GROUP BY l.id`, id,
	).Scan(&l.ID, &l.SenderEmail, &l.RecipientEmail, &l.Subject, &l.Body, &l.CreatedAt, &l.SignatureCount)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "letter not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load letter"})
	}

	if user, ok := currentUser(c); ok {
		err := s.db.QueryRow(
			`SELECT 1 FROM signatures WHERE user_id = ? AND letter_id = ?`,
			user.ID, id,
		).Scan(new(int))
		if err == nil {
			l.IsSigned = true
		}
	}

	return c.JSON(http.StatusOK, l)
}

func (s *Server) handleCreateLetter(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	var req createLetterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.RecipientEmail == "" || req.Subject == "" || req.Body == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient, subject and body are required"})
	}

	var last string
	err := s.db.QueryRow(
		`SELECT created_at FROM letters WHERE sender_id = ? ORDER BY created_at DESC LIMIT 1`,
		user.ID,
	).Scan(&last)
	if err == nil {
		if t, perr := time.Parse(time.RFC3339, last); perr == nil && time.Since(t) < writeCooldown {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "cooldown active, you can only write one letter per minute"})
		}
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO letters (id, sender_id, recipient_email, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, user.ID, req.RecipientEmail, req.Subject, req.Body, createdAt,
	)
	if err != nil {
		logger.Error("letter insert failed", logger.F("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create letter"})
	}

	return c.JSON(http.StatusCreated, letterResponse{
		ID:             id,
		SenderEmail:    user.Email,
		RecipientEmail: req.RecipientEmail,
		Subject:        req.Subject,
		Body:           req.Body,
		CreatedAt:      createdAt,
	})
}

func (s *Server) handleToggleSignature(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	id := c.Param("id")

	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM letters WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "letter not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
	}
	defer tx.Rollback()

	var signed bool
	err = tx.QueryRow(`SELECT 1 FROM signatures WHERE user_id = ? AND letter_id = ?`, user.ID, id).Scan(new(int))
	switch err {
	case nil:
		if _, err := tx.Exec(`DELETE FROM signatures WHERE user_id = ? AND letter_id = ?`, user.ID, id); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
		}
		signed = false
	case sql.ErrNoRows:
		_, err := tx.Exec(
			`INSERT INTO signatures (user_id, letter_id, created_at) VALUES (?, ?, ?)`,
			user.ID, id, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
		}
		signed = true
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM signatures WHERE letter_id = ?`, id).Scan(&count); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update signature"})
	}

	return c.JSON(http.StatusOK, map[string]any{"signed": signed, "signatureCount": count})
}
