package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Claims are the token fields this client cares about. The server signs the
// token; the client only reads the payload segment. Signature verification
// stays on the server, which rejects tampered tokens on the first
// authenticated call.
type Claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// Expiry returns the expiry instant, or zero time if the token carries none
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

// Decode extracts the claims from a JWT-shaped token string. It is pure: no
// storage access, no clock access. Expiry checking belongs to the caller.
func Decode(raw string) (Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("malformed token: expected 3 segments, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return Claims{}, fmt.Errorf("malformed token payload: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, fmt.Errorf("invalid token claims: %w", err)
	}

	if claims.Email == "" {
		return Claims{}, fmt.Errorf("token missing email claim")
	}

	return claims, nil
}
