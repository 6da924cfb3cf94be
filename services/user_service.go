package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// UserService is the Postgres-backed UserRepository
type UserService struct {
	DB *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{DB: db}
}

// CreateUser inserts the user. A duplicate email returns shared.ErrConflict.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, password_hash, mobileno, role, language)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`

	err := s.DB.QueryRowContext(ctx, query,
		user.Name, strings.ToLower(user.Email), user.PasswordHash, user.MobileNo, string(user.Role), user.Language,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("email %s: %w", user.Email, shared.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.getOne(ctx, `SELECT id, name, email, password_hash, mobileno, role, language, created_at
              FROM users WHERE id = $1`, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `SELECT id, name, email, password_hash, mobileno, role, language, created_at
              FROM users WHERE email = $1`, strings.ToLower(email))
}

// ListUsers returns at most limit users in registration order
func (s *UserService) ListUsers(ctx context.Context, limit int) ([]models.User, error) {
	query := `SELECT id, name, email, password_hash, mobileno, role, language, created_at
              FROM users ORDER BY created_at ASC LIMIT $1`

	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *UserService) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.MobileNo, &role, &user.Language, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}
