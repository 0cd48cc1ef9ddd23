package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/utils"
)

const (
	sqlInsertUser = `
INSERT INTO users (email, password_hash, role)
VALUES (?, ?, ?)`

	sqlSelectUser = `
SELECT id, email, password_hash, role, is_active, created_at, updated_at
FROM users`
)

// UserRepo persists tracker accounts.  Emails are normalized to lower case
// before every read and write so lookups never miss on casing.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create hashes the password and inserts the account.  A unique-key clash on
// the email column answers ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlInsertUser, normalizeEmail(email), hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail loads an account by its normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, sqlSelectUser+" WHERE email = ? LIMIT 1", normalizeEmail(email)))
}

// GetByID loads an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, sqlSelectUser+" WHERE id = ? LIMIT 1", id))
}
