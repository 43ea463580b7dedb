package payroll

import (
	"context"
	"errors"
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

const payslipColumns = `id, employee_id, base_salary, allowances, deductions, salary, net_salary,
  month, pdf_path, active, created_by, created_at, updated_by, updated_at`

func scanPayslip(row pgx.Row) (Payslip, error) {
	var p Payslip
	err := row.Scan(&p.ID, &p.EmployeeID, &p.BaseSalary, &p.Allowances, &p.Deductions, &p.Salary, &p.NetSalary,
		&p.Month, &p.PDFPath, &p.Active, &p.CreatedBy, &p.CreatedAt, &p.UpdatedBy, &p.UpdatedAt)
	return p, err
}

// EmployeeSummary loads the employee together with the earliest active
// department assignment.
func (s *Store) EmployeeSummary(ctx context.Context, employeeID int64) (EmployeeSummary, error) {
	var e EmployeeSummary
	err := s.DB.QueryRow(ctx, `
    SELECT e.id, e.name, e.code, e.email,
      COALESCE((
        SELECT d.name FROM department_employees de
        JOIN departments d ON de.department_id = d.id
        WHERE de.employee_id = e.id AND de.active AND d.active
        ORDER BY de.created_at, de.id
        LIMIT 1
      ), '')
    FROM employees e
    WHERE e.id = $1
  `, employeeID).Scan(&e.ID, &e.Name, &e.Code, &e.Email, &e.Department)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeSummary{}, ErrEmployeeNotFound
	}
	return e, err
}

func (s *Store) Create(ctx context.Context, employeeID int64, c Components, actorID int64) (Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, `
    INSERT INTO payslips (employee_id, base_salary, allowances, deductions, month, created_by)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+payslipColumns,
		employeeID, c.Base, c.Allowances, c.Deductions, c.Month, actorID))
	switch {
	case db.IsForeignKeyViolation(err):
		return Payslip{}, ErrEmployeeNotFound
	case db.IsCheckViolation(err):
		return Payslip{}, apperr.Invalid("baseSalary", "violates salary constraints")
	}
	return p, err
}

func (s *Store) Get(ctx context.Context, id int64) (Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE id = $1 AND active", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrPayslipNotFound
	}
	return p, err
}

func (s *Store) LatestForEmployee(ctx context.Context, employeeID int64) (Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips
    WHERE employee_id = $1 AND active
    ORDER BY created_at DESC, id DESC
    LIMIT 1
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrPayslipNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Payslip, int, error) {
	where := sq.And{}
	if filter.EmployeeID > 0 {
		where = append(where, sq.Eq{"employee_id": filter.EmployeeID})
	}
	if month := strings.TrimSpace(filter.Month); month != "" {
		where = append(where, sq.Eq{"month": month})
	}
	if filter.Active != nil {
		where = append(where, sq.Eq{"active": *filter.Active})
	} else {
		where = append(where, sq.Eq{"active": true})
	}

	countSQL, countArgs, err := psql.Select("COUNT(1)").From("payslips").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := psql.Select(payslipColumns).From("payslips").Where(where).OrderBy("created_at DESC", "id DESC")
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

	out := make([]Payslip, 0)
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// UpdateComponents succeeds only while no document has been generated.
func (s *Store) UpdateComponents(ctx context.Context, id int64, c Components, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips
    SET base_salary = $1, allowances = $2, deductions = $3, month = $4, updated_by = $5, updated_at = now()
    WHERE id = $6 AND active AND pdf_path IS NULL
  `, c.Base, c.Allowances, c.Deductions, c.Month, actorID, id)
	if db.IsCheckViolation(err) {
		return apperr.Invalid("baseSalary", "violates salary constraints")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPayslipLocked
	}
	return nil
}

func (s *Store) SetPDFPath(ctx context.Context, id int64, path string, actorID int64) error {
	return s.exec(ctx, `
    UPDATE payslips SET pdf_path = $1, updated_by = $2, updated_at = now()
    WHERE id = $3 AND active
  `, path, actorID, id)
}

func (s *Store) Deactivate(ctx context.Context, id, actorID int64) error {
	return s.exec(ctx, `
    UPDATE payslips SET active = false, updated_by = $1, updated_at = now()
    WHERE id = $2 AND active
  `, actorID, id)
}

func (s *Store) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPayslipNotFound
	}
	return nil
}
