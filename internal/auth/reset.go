package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenSigner issues and verifies self-contained password reset tokens.
// The token carries only the email; tenant resolution happens again on
// confirmation, so a token cannot be replayed against another workspace.
type ResetTokenSigner struct {
	secret   []byte
	lifetime time.Duration
}

func NewResetTokenSigner(secret string, lifetime time.Duration) *ResetTokenSigner {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &ResetTokenSigner{secret: []byte(secret), lifetime: lifetime}
}

type resetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *ResetTokenSigner) Sign(email string) (string, error) {
	now := time.Now()
	claims := resetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "password_reset",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the email the token was issued for, or an error when the
// token is expired, tampered with, or signed with a different method.
func (s *ResetTokenSigner) Verify(token string) (string, error) {
	var claims resetClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid reset token: %w", err)
	}
	if claims.Email == "" {
		return "", fmt.Errorf("reset token missing email claim")
	}
	return claims.Email, nil
}

// Mailer delivers password reset tokens to users.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer is the default delivery path when no SMTP relay is configured.
// The token ends up in the server log for an operator to hand over manually.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.Logger.Info("password reset requested", "email", email, "token", token)
	return nil
}
