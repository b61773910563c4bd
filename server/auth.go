package server

import (
	"database/sql"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/openletters/carta/internal/logger"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
	}
	if msg := passwordPolicy(req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to register"})
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, req.Email, string(hash), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
		}
		logger.Error("register failed", logger.F("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to register"})
	}

	logger.Info("user registered", logger.F("email", req.Email))
	return c.JSON(http.StatusCreated, map[string]string{"id": id, "email": req.Email})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var id, hash string
	err := s.db.QueryRow(`SELECT id, password_hash FROM users WHERE email = ?`, req.Email).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}

	token, err := signToken(s.secret, id, req.Email, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func passwordPolicy(pw string) string {
	if len(pw) < 8 {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "password must contain an uppercase letter, a lowercase letter and a digit"
	}
	return ""
}

const authContextKey = "auth-user"

type authUser struct {
	ID    string
	Email string
}

// authRequired rejects requests without a valid bearer token.
func (s *Server) authRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := s.bearerUser(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		}
		c.Set(authContextKey, user)
		return next(c)
	}
}

// authOptional attaches the user when a valid token is present and lets the
// request through either way.
func (s *Server) authOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, ok := s.bearerUser(c); ok {
			c.Set(authContextKey, user)
		}
		return next(c)
	}
}

func (s *Server) bearerUser(c echo.Context) (authUser, bool) {
	header := c.Request().Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return authUser{}, false
	}
	claims, err := parseToken(s.secret, raw, time.Now())
	if err != nil {
		return authUser{}, false
	}
	return authUser{ID: claims.Subject, Email: claims.Email}, true
}

func currentUser(c echo.Context) (authUser, bool) {
	user, ok := c.Get(authContextKey).(authUser)
	return user, ok
}
