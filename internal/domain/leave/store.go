package leave

import (
	"context"
	"errors"

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

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, max_days_per_year,
  reason, status, active, created_by, created_at, updated_by, updated_at`

func scanLeave(row pgx.Row) (Leave, error) {
	var l Leave
	err := row.Scan(&l.ID, &l.EmployeeID, &l.Type, &l.StartDate, &l.EndDate, &l.MaxDaysPerYear,
		&l.Reason, &l.Status, &l.Active, &l.CreatedBy, &l.CreatedAt, &l.UpdatedBy, &l.UpdatedAt)
	if err != nil {
		return Leave{}, err
	}
	l.Days, _ = CalculateDays(l.StartDate, l.EndDate)
	return l, nil
}

func (s *Store) Create(ctx context.Context, req Request, actorID int64) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leaves (employee_id, leave_type, start_date, end_date, max_days_per_year, reason, status, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, req.EmployeeID, req.Type, req.StartDate, req.EndDate, req.MaxDaysPerYear, req.Reason, StatusPending, actorID).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, apperr.Invalid("employeeId", "does not reference an existing employee")
	}
	return id, err
}

func (s *Store) Get(ctx context.Context, id int64) (Leave, error) {
	l, err := scanLeave(s.DB.QueryRow(ctx, "SELECT "+leaveColumns+" FROM leaves WHERE id = $1 AND active", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Leave{}, ErrLeaveNotFound
	}
	return l, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Leave, int, error) {
	where := sq.And{sq.Expr("active")}
	if filter.EmployeeID > 0 {
		where = append(where, sq.Eq{"employee_id": filter.EmployeeID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.Type != "" {
		where = append(where, sq.Eq{"leave_type": filter.Type})
	}

	countSQL, countArgs, err := psql.Select("COUNT(1)").From("leaves").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := psql.Select(leaveColumns).From("leaves").Where(where).OrderBy("start_date DESC", "id DESC")
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

	out := make([]Leave, 0)
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, req Request, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves
    SET leave_type = $1, start_date = $2, end_date = $3, max_days_per_year = $4, reason = $5,
        updated_by = $6, updated_at = now()
    WHERE id = $7 AND active AND status = $8
  `, req.Type, req.StartDate, req.EndDate, req.MaxDaysPerYear, req.Reason, actorID, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotEditable
	}
	return nil
}

// SetStatus moves the leave to status only if it is still in from, so two
// concurrent decisions cannot both win.
func (s *Store) SetStatus(ctx context.Context, id int64, from, to Status, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves SET status = $1, updated_by = $2, updated_at = now()
    WHERE id = $3 AND active AND status = $4
  `, to, actorID, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Store) Deactivate(ctx context.Context, id, actorID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves SET active = false, updated_by = $1, updated_at = now()
    WHERE id = $2 AND active
  `, actorID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeaveNotFound
	}
	return nil
}
