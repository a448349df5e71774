package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidToken is returned when a token cannot be resolved to a user
var ErrInvalidToken = errors.New("invalid or expired token")

// UserContextKey is the key for user data in context
type UserContextKey struct{}

// UserContext holds authenticated user information
type UserContext struct {
	UserID uint64
	Email  string
	Token  string
}

// TokenValidator interface for validating tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*UserContext, error)
}

// DBTokenValidator resolves opaque API tokens against the api_tokens table.
// Token issuance lives in the identity service; this side only reads.
type DBTokenValidator struct {
	db *sql.DB
}

// NewDBTokenValidator creates a validator backed by the shared database.
func NewDBTokenValidator(db *sql.DB) *DBTokenValidator {
	return &DBTokenValidator{db: db}
}

// ValidateToken looks the token up and returns the owning user context.
func (v *DBTokenValidator) ValidateToken(ctx context.Context, token string) (*UserContext, error) {
	query := `
		SELECT t.user_id, u.email
		FROM api_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = ? AND (t.expires_at IS NULL OR t.expires_at > ?)
	`

	userCtx := &UserContext{Token: token}
	err := v.db.QueryRowContext(ctx, query, token, time.Now()).Scan(&userCtx.UserID, &userCtx.Email)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	return userCtx, nil
}

// FromContext extracts the authenticated user from a request context.
func FromContext(ctx context.Context) (*UserContext, bool) {
	userCtx, ok := ctx.Value(UserContextKey{}).(*UserContext)
	return userCtx, ok
}
