// Package auth mints and verifies the anonymous session tokens viewers use
// to join chat rooms. There are no accounts: a token carries nothing but a
// random author id and an expiry.
package auth

import (
	"fmt"
	"time"

	"dropchat/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// IssueToken mints a session token with a fresh author id.
func (s *Service) IssueToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"author_token": uuid.NewString(),
		"exp":          now.Add(s.cfg.Session.ExpiresIn).Unix(),
		"iat":          now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.Session.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// AuthorFromToken validates the token and returns the author id embedded in
// it.
func (s *Service) AuthorFromToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Session.Secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	author, ok := (*claims)["author_token"].(string)
	if !ok || author == "" {
		return "", fmt.Errorf("invalid author id in token")
	}
	return author, nil
}
