package auth

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Default token configuration.
const (
	DefaultTokenPrefix        = "tn_"
	DefaultTokenLength        = 32
	DefaultTokenDisplayLength = 10
)

const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TokenConfig holds configuration for token generation.
type TokenConfig struct {
	// Prefix is prepended to all tokens. Defaults to "tn_".
	Prefix string

	// RandomLength is the length of the random part. Defaults to 32.
	RandomLength int

	// DisplayLength is how many characters Display shows. Defaults to 10.
	DisplayLength int
}

func (c TokenConfig) prefix() string {
	if c.Prefix == "" {
		return DefaultTokenPrefix
	}
	return c.Prefix
}

func (c TokenConfig) randomLength() int {
	if c.RandomLength == 0 {
		return DefaultTokenLength
	}
	return c.RandomLength
}

func (c TokenConfig) displayLength() int {
	if c.DisplayLength == 0 {
		return DefaultTokenDisplayLength
	}
	return c.DisplayLength
}

// Token is a freshly generated token. Secret is only available here.
type Token struct {
	Secret  string
	Display string // e.g. "tn_aBc1234..."
	Hash    string // SHA-256 of Secret, hex encoded
}

// GenerateToken creates a new random token.
func GenerateToken(cfg TokenConfig) (*Token, error) {
	random, err := nanoid.Generate(tokenAlphabet, cfg.randomLength())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	secret := cfg.prefix() + random

	return &Token{
		Secret:  secret,
		Display: DisplayPrefix(secret, cfg),
		Hash:    HashToken(secret),
	}, nil
}

// ValidateTokenFormat checks whether s looks like a token made with cfg.
func ValidateTokenFormat(s string, cfg TokenConfig) bool {
	prefix := cfg.prefix()
	return strings.HasPrefix(s, prefix) && len(s) == len(prefix)+cfg.randomLength()
}

// DisplayPrefix shortens a token for logs and terminal output.
func DisplayPrefix(token string, cfg TokenConfig) string {
	n := cfg.displayLength()
	if len(token) <= n {
		return token
	}
	return token[:n] + "..."
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
