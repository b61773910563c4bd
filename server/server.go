// Package server is a small reference implementation of the letters API,
// used for local development and for exercising the client against the real
// wire contract. The production backend lives elsewhere; this one exists to
// pin the contract down.
package server

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/openletters/carta/internal/logger"
)

// Server serves the letters API backed by SQLite
type Server struct {
	db     *sql.DB
	echo   *echo.Echo
	secret []byte
}

// New creates a server over the database at dbPath. An empty secret gets a
// random one, which invalidates outstanding tokens on restart; fine for
// development.
func New(dbPath, secret string) (*Server, error) {
	db, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
	}

	s := &Server{db: db, secret: []byte(secret)}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("HTTP Request",
				logger.F("method", c.Request().Method),
				logger.F("uri", c.Request().RequestURI),
				logger.F("status", c.Response().Status),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	e.GET("/letters", s.handleSearchLetters)
	e.GET("/letters/:id", s.handleGetLetter, s.authOptional)
	e.POST("/letters", s.handleCreateLetter, s.authRequired)
	e.POST("/letters/:id/toggle-signature", s.handleToggleSignature, s.authRequired)

	e.POST("/users/register", s.handleRegister)
	e.POST("/users/login", s.handleLogin)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
