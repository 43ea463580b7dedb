package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ems/internal/domain/auth"
	"ems/internal/platform/config"
)

var seedRoles = []string{auth.RoleAdmin, auth.RoleHR, auth.RoleEmployee}

// Seed creates the default roles and, when configured, an admin employee.
// It is safe to run on every start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}
	return ensureAdminEmployee(ctx, pool, roleIDs[auth.RoleAdmin], cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]int64, error) {
	roleIDs := make(map[string]int64, len(seedRoles))
	for _, name := range seedRoles {
		var id int64
		err := pool.QueryRow(ctx, `
    INSERT INTO roles (name) VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, name).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[name] = id
	}
	return roleIDs, nil
}

func ensureAdminEmployee(ctx context.Context, pool *pgxpool.Pool, roleID int64, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id int64
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE lower(email) = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO employees (code, name, email, gender, role_id, password_hash)
    VALUES ('EMP0000', $1, $2, 'Other', $3, $4)
    ON CONFLICT DO NOTHING
  `, name, email, roleID, hash)
	return err
}
