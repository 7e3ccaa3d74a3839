package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// SQLiteRepository implements Repository on the SQLite store.
type SQLiteRepository struct {
	conn *sql.DB
}

// NewRepository constructs a SQLite repository.
func NewRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

const (
	sqlInsertUser = `
		INSERT INTO users (email, password_hash, created_at)
		VALUES (?, ?, ?)`

	sqlFindUserByEmail = `
		SELECT id, email, password_hash, created_at
		FROM   users
		WHERE  email = ?
		LIMIT  1`
)

// CreateUser persists a new user row and returns it with the
// store-assigned id. A duplicate email maps to shared.ErrDuplicate.
func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	result, err := r.conn.ExecContext(ctx, sqlInsertUser, email, passwordHash, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// FindByEmail fetches a user by normalized email.
func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := r.conn.QueryRowContext(ctx, sqlFindUserByEmail, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

var _ Repository = (*SQLiteRepository)(nil)
