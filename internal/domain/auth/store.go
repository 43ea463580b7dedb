package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCredentialNotFound = errors.New("credential not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveByEmail(ctx context.Context, email string) (Credential, error) {
	var out Credential
	err := s.DB.QueryRow(ctx, `
    SELECT e.id, e.name, e.email, e.role_id, r.name, e.password_hash
    FROM employees e
    JOIN roles r ON e.role_id = r.id
    WHERE lower(e.email) = $1 AND e.active AND r.active
  `, strings.ToLower(strings.TrimSpace(email))).Scan(&out.EmployeeID, &out.Name, &out.Email, &out.RoleID, &out.RoleName, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrCredentialNotFound
	}
	return out, err
}
