package leave

import "context"

type StoreAPI interface {
	Create(ctx context.Context, req Request, actorID int64) (int64, error)
	Get(ctx context.Context, id int64) (Leave, error)
	List(ctx context.Context, filter Filter) ([]Leave, int, error)
	Update(ctx context.Context, id int64, req Request, actorID int64) error
	SetStatus(ctx context.Context, id int64, from, to Status, actorID int64) error
	Deactivate(ctx context.Context, id, actorID int64) error
}

var _ StoreAPI = (*Store)(nil)
