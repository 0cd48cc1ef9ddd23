package repository

import (
	"context"
	"database/sql"
	"time"
)

const (
	sqlInsertRefreshToken = `
INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
VALUES (?, ?, ?)`

	sqlSelectRefreshToken = `
SELECT user_id, expires_at, revoked_at
FROM refresh_tokens
WHERE token_hash = ?
LIMIT 1`

	sqlRevokeRefreshToken = `
UPDATE refresh_tokens SET revoked_at = NOW()
WHERE token_hash = ? AND revoked_at IS NULL`

	sqlRevokeUserTokens = `
UPDATE refresh_tokens SET revoked_at = NOW()
WHERE user_id = ? AND revoked_at IS NULL`
)

// TokenRepo persists hashed refresh tokens.  Raw token values never reach
// the database; callers hash them first (utils.HashRefreshRaw).
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh records a new refresh token hash for a user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx, sqlInsertRefreshToken, userID, tokenHash, exp)
	return err
}

// ValidateRefresh resolves a token hash to its owning user.  Revoked and
// expired tokens answer sql.ErrNoRows, same as unknown ones, so callers
// cannot distinguish the cases.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, sqlSelectRefreshToken, tokenHash).
		Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// RevokeByHash revokes a single token.  Revoking an already revoked or
// unknown token is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, sqlRevokeRefreshToken, tokenHash)
	return err
}

// RevokeAllForUser revokes every active token a user holds.  Used on logout
// so stolen refresh tokens die with the session.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, sqlRevokeUserTokens, userID)
	return err
}
