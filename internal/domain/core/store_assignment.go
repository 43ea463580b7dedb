package core

import (
	"context"

	"github.com/jackc/pgx/v5"

	"ems/internal/platform/apperr"
	"ems/internal/platform/db"
)

// AssignDepartments links the employee to every department in one
// transaction. Re-assigning an inactive link reactivates it.
func (s *Store) AssignDepartments(ctx context.Context, employeeID int64, departmentIDs []int64, actorID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, departmentID := range departmentIDs {
		_, err := tx.Exec(ctx, `
    INSERT INTO department_employees (employee_id, department_id, created_by)
    VALUES ($1, $2, $3)
    ON CONFLICT (employee_id, department_id)
    DO UPDATE SET active = true, updated_by = EXCLUDED.created_by, updated_at = now()
  `, employeeID, departmentID, actorID)
		if db.IsForeignKeyViolation(err) {
			return apperr.Invalid("departmentIds", "must reference existing employee and departments")
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListEmployeeDepartments(ctx context.Context, employeeID int64) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT de.id, de.employee_id, de.department_id, d.name, de.created_at
    FROM department_employees de
    JOIN departments d ON de.department_id = d.id
    WHERE de.employee_id = $1 AND de.active AND d.active
    ORDER BY de.created_at, de.id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

// ListAllAssignments pages over every active link across employees.
func (s *Store) ListAllAssignments(ctx context.Context, limit, offset int) ([]Assignment, int, error) {
	const activeLinks = "de.active AND d.active"
	countSQL, _, err := psql.Select("COUNT(1)").
		From("department_employees de").
		Join("departments d ON de.department_id = d.id").
		Where(activeLinks).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := psql.Select("de.id, de.employee_id, de.department_id, d.name, de.created_at").
		From("department_employees de").
		Join("departments d ON de.department_id = d.id").
		Where(activeLinks).
		OrderBy("de.employee_id", "de.created_at", "de.id")
	if limit > 0 {
		query = query.Limit(uint64(limit)).Offset(uint64(max(offset, 0)))
	}
	listSQL, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := scanAssignments(rows)
	return out, total, err
}

func scanAssignments(rows pgx.Rows) ([]Assignment, error) {
	defer rows.Close()

	out := make([]Assignment, 0)
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.DepartmentID, &a.Department, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) RemoveAssignment(ctx context.Context, employeeID, departmentID, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE department_employees SET active = false, updated_by = $1, updated_at = now()
    WHERE employee_id = $2 AND department_id = $3 AND active
  `, actorID, employeeID, departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}
