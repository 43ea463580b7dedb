package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"ems/internal/platform/db"
)

// Departments and roles share the same (id, name, active, audit) shape, so
// both go through namedTable.
type namedTable struct {
	table    string
	notFound error
}

var (
	departmentsTable = namedTable{table: "departments", notFound: ErrDepartmentNotFound}
	rolesTable       = namedTable{table: "roles", notFound: ErrRoleNotFound}
)

type namedRow struct {
	ID     int64
	Name   string
	Active bool
	Audit
}

func (t namedTable) list(ctx context.Context, s *Store, activeOnly bool, limit, offset int) ([]namedRow, int, error) {
	query := psql.Select("id, name, active, created_by, created_at, updated_by, updated_at").
		From(t.table).
		OrderBy("name")
	count := psql.Select("COUNT(1)").From(t.table)
	if activeOnly {
		query = query.Where("active")
		count = count.Where("active")
	}
	if limit > 0 {
		query = query.Limit(uint64(limit)).Offset(uint64(max(offset, 0)))
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
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

	out := make([]namedRow, 0)
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Active, &r.CreatedBy, &r.CreatedAt, &r.UpdatedBy, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (t namedTable) get(ctx context.Context, s *Store, id int64) (namedRow, error) {
	var r namedRow
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, active, created_by, created_at, updated_by, updated_at
    FROM `+t.table+` WHERE id = $1
  `, id).Scan(&r.ID, &r.Name, &r.Active, &r.CreatedBy, &r.CreatedAt, &r.UpdatedBy, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return namedRow{}, t.notFound
	}
	return r, err
}

func (t namedTable) create(ctx context.Context, s *Store, name string, actorID int64) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, "INSERT INTO "+t.table+" (name, created_by) VALUES ($1, $2) RETURNING id", name, actorID).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, ErrNameTaken
	}
	return id, err
}

func (t namedTable) update(ctx context.Context, s *Store, id int64, name string, active bool, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE `+t.table+` SET name = $1, active = $2, updated_by = $3, updated_at = now()
    WHERE id = $4
  `, name, active, actorID, id)
	if db.IsUniqueViolation(err) {
		return ErrNameTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return t.notFound
	}
	return nil
}

func (t namedTable) deactivate(ctx context.Context, s *Store, id, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE `+t.table+` SET active = false, updated_by = $1, updated_at = now()
    WHERE id = $2
  `, actorID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return t.notFound
	}
	return nil
}

func toDepartment(r namedRow) Department {
	return Department{ID: r.ID, Name: r.Name, Active: r.Active, Audit: r.Audit}
}

func toRole(r namedRow) Role {
	return Role{ID: r.ID, Name: r.Name, Active: r.Active, Audit: r.Audit}
}

func (s *Store) ListDepartments(ctx context.Context, activeOnly bool, limit, offset int) ([]Department, int, error) {
	rows, total, err := departmentsTable.list(ctx, s, activeOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Department, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDepartment(r))
	}
	return out, total, nil
}

func (s *Store) GetDepartment(ctx context.Context, id int64) (Department, error) {
	r, err := departmentsTable.get(ctx, s, id)
	return toDepartment(r), err
}

func (s *Store) CreateDepartment(ctx context.Context, name string, actorID int64) (int64, error) {
	return departmentsTable.create(ctx, s, name, actorID)
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, name string, active bool, actorID int64) error {
	return departmentsTable.update(ctx, s, id, name, active, actorID)
}

func (s *Store) DeactivateDepartment(ctx context.Context, id, actorID int64) error {
	return departmentsTable.deactivate(ctx, s, id, actorID)
}

func (s *Store) ListRoles(ctx context.Context, activeOnly bool, limit, offset int) ([]Role, int, error) {
	rows, total, err := rolesTable.list(ctx, s, activeOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Role, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRole(r))
	}
	return out, total, nil
}

func (s *Store) GetRole(ctx context.Context, id int64) (Role, error) {
	r, err := rolesTable.get(ctx, s, id)
	return toRole(r), err
}

func (s *Store) CreateRole(ctx context.Context, name string, actorID int64) (int64, error) {
	return rolesTable.create(ctx, s, name, actorID)
}

func (s *Store) UpdateRole(ctx context.Context, id int64, name string, active bool, actorID int64) error {
	return rolesTable.update(ctx, s, id, name, active, actorID)
}

func (s *Store) DeactivateRole(ctx context.Context, id, actorID int64) error {
	return rolesTable.deactivate(ctx, s, id, actorID)
}
