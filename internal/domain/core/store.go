package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ems/internal/platform/apperr"
	"ems/internal/platform/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const employeeColumns = `e.id, e.code, e.name, e.email, e.mobile, e.gender, e.date_of_birth,
  COALESCE(e.profile_photo_path, ''), e.role_id, r.name, e.active,
  e.created_by, e.created_at, e.updated_by, e.updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.Code, &emp.Name, &emp.Email, &emp.Mobile, &emp.Gender, &emp.DateOfBirth,
		&emp.ProfilePhotoPath, &emp.RoleID, &emp.RoleName, &emp.Active,
		&emp.CreatedBy, &emp.CreatedAt, &emp.UpdatedBy, &emp.UpdatedAt,
	)
	return emp, err
}

// CreateEmployee reserves the id first so a missing code can be derived from
// it (EMP0007).
func (s *Store) CreateEmployee(ctx context.Context, in NewEmployee, passwordHash string, actorID int64) (int64, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, "SELECT nextval(pg_get_serial_sequence('employees', 'id'))").Scan(&id); err != nil {
		return 0, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		code = fmt.Sprintf("EMP%04d", id)
	}

	_, err = tx.Exec(ctx, `
    INSERT INTO employees (id, code, name, email, mobile, gender, date_of_birth, role_id, password_hash, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, id, code, in.Name, strings.ToLower(in.Email), in.Mobile, in.Gender, in.DateOfBirth, in.RoleID, passwordHash, actorID)
	if err != nil {
		return 0, translateEmployeeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    JOIN roles r ON e.role_id = r.id
    WHERE e.id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, int, error) {
	where := sq.And{}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		where = append(where, sq.Or{
			sq.Like{"lower(e.name)": like},
			sq.Like{"lower(e.email)": like},
			sq.Like{"lower(e.code)": like},
		})
	}
	if filter.RoleID > 0 {
		where = append(where, sq.Eq{"e.role_id": filter.RoleID})
	}
	if filter.Active != nil {
		where = append(where, sq.Eq{"e.active": *filter.Active})
	}

	countSQL, countArgs, err := psql.Select("COUNT(1)").From("employees e").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := psql.Select(employeeColumns).
		From("employees e").
		Join("roles r ON e.role_id = r.id").
		Where(where).
		OrderBy("e.id")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(uint64(max(filter.Offset, 0)))
	}
	listSQL, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, in ProfileUpdate, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1, mobile = $2, gender = $3, date_of_birth = $4, role_id = $5,
        updated_by = $6, updated_at = now()
    WHERE id = $7
  `, in.Name, in.Mobile, in.Gender, in.DateOfBirth, in.RoleID, actorID, id)
	if err != nil {
		return translateEmployeeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) PasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM employees WHERE id = $1 AND active", id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return hash, err
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string, actorID int64) error {
	return s.touchEmployee(ctx, id, actorID, "password_hash = $3", hash)
}

func (s *Store) UpdatePhotoPath(ctx context.Context, id int64, path string, actorID int64) error {
	return s.touchEmployee(ctx, id, actorID, "profile_photo_path = $3", path)
}

func (s *Store) DeactivateEmployee(ctx context.Context, id, actorID int64) error {
	return s.touchEmployee(ctx, id, actorID, "active = $3", false)
}

func (s *Store) touchEmployee(ctx context.Context, id, actorID int64, set string, value any) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET `+set+`, updated_by = $2, updated_at = now()
    WHERE id = $1
  `, id, actorID, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func translateEmployeeErr(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		if strings.Contains(db.ConstraintName(err), "code") {
			return ErrCodeTaken
		}
		return ErrEmailTaken
	case db.IsForeignKeyViolation(err):
		return apperr.Invalid("roleId", "does not reference an existing role")
	case db.IsCheckViolation(err):
		return apperr.Invalid("gender", "must be Male, Female or Other")
	}
	return err
}
