package audit

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Event is a stored audit row.
type Event struct {
	ID         int64           `json:"id"`
	ActorID    *int64          `json:"actorId,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Entry is what callers record. Before and After are marshalled to JSON.
type Entry struct {
	ActorID    int64
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    int64
	Limit      int
	Offset     int
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	beforeJSON, err := payload(entry.Before)
	if err != nil {
		return err
	}
	afterJSON, err := payload(entry.After)
	if err != nil {
		return err
	}
	var actor *int64
	if entry.ActorID > 0 {
		actor = &entry.ActorID
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, request_id, ip, before_json, after_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, actor, entry.Action, entry.EntityType, entry.EntityID, entry.RequestID, entry.IP, beforeJSON, afterJSON)
	return err
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Event, int, error) {
	where := buildWhere(filter)

	countSQL, countArgs, err := psql.Select("COUNT(1)").From("audit_events").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := psql.Select("id, actor_id, action, entity_type, entity_id, request_id, ip, created_at, before_json, after_json").
		From("audit_events").
		Where(where).
		OrderBy("created_at DESC", "id DESC")
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

	out := make([]Event, 0)
	for rows.Next() {
		var evt Event
		var before, after []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID,
			&evt.RequestID, &evt.IP, &evt.CreatedAt, &before, &after); err != nil {
			return nil, 0, err
		}
		evt.Before, evt.After = before, after
		out = append(out, evt)
	}
	return out, total, rows.Err()
}

func buildWhere(filter Filter) sq.And {
	where := sq.And{}
	if filter.Action != "" {
		where = append(where, sq.Eq{"action": filter.Action})
	}
	if filter.EntityType != "" {
		where = append(where, sq.Eq{"entity_type": filter.EntityType})
	}
	if filter.EntityID != "" {
		where = append(where, sq.Eq{"entity_id": filter.EntityID})
	}
	if filter.ActorID > 0 {
		where = append(where, sq.Eq{"actor_id": filter.ActorID})
	}
	return where
}

func payload(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
