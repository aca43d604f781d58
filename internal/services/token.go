package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/fleetdesk/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService manages one-time member tokens used by the email
// verification and password reset flows. Only hashes are stored.
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) Issue(ctx context.Context, memberID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO member_tokens (member_id, purpose, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, memberID, purpose, HashToken(token), time.Now().Add(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Consume deletes the token and returns its member. A token can be used once.
func (s *TokenService) Consume(ctx context.Context, purpose, token string) (uuid.UUID, error) {
	var memberID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		DELETE FROM member_tokens
		WHERE token_hash = $1 AND purpose = $2 AND expires_at > NOW()
		RETURNING member_id
	`, HashToken(token), purpose).Scan(&memberID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	return memberID, nil
}

func (s *TokenService) RevokeAll(ctx context.Context, memberID uuid.UUID, purpose string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM member_tokens WHERE member_id = $1 AND purpose = $2`, memberID, purpose)
	return err
}

func (s *TokenService) CleanupExpired(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM member_tokens WHERE expires_at < NOW()`)
	return err
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
