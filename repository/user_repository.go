package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resona/model"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateUser is returned when a username or email is already taken.
var ErrDuplicateUser = errors.New("username or email already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, NOW(), NOW())`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}
