package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// tokenTTL is how long an issued token stays valid
const tokenTTL = 24 * time.Hour

type tokenClaims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// signToken mints an HS256 JWT for the given user
func signToken(secret []byte, userID, email string, now time.Time) (string, error) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	payload, err := json.Marshal(tokenClaims{
		Subject:   userID,
		Email:     email,
		ExpiresAt: now.Add(tokenTTL).Unix(),
		IssuedAt:  now.Unix(),
	})
	if err != nil {
		return "", err
	}

	signing := header + "." + base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signing))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return signing + "." + sig, nil
}

// parseToken verifies the signature and expiry of a token and returns its
// claims.
func parseToken(secret []byte, raw string, now time.Time) (tokenClaims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return tokenClaims{}, fmt.Errorf("malformed token")
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	want := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(parts[2])) {
		return tokenClaims{}, fmt.Errorf("invalid token signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return tokenClaims{}, fmt.Errorf("malformed token payload: %w", err)
	}

	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return tokenClaims{}, fmt.Errorf("invalid token claims: %w", err)
	}

	if claims.ExpiresAt != 0 && now.Unix() > claims.ExpiresAt {
		return tokenClaims{}, fmt.Errorf("token expired")
	}

	return claims, nil
}
