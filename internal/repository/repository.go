package repository

import (
	"context"

	"klotto/internal/models"
)

type DrawRepository interface {
	// InsertDrawIgnore inserts the draw unless its draw_no already exists.
	// The bool reports whether a row was written.
	InsertDrawIgnore(ctx context.Context, item *models.Draw) (bool, error)
	GetDraw(ctx context.Context, drawNo int) (*models.Draw, error)
	ListDraws(ctx context.Context, params ListDrawsParams) ([]models.Draw, error)
	CountDraws(ctx context.Context) (int64, error)
	MaxDrawNo(ctx context.Context) (int, error)
}

type SyncStateRepository interface {
	GetSyncState(ctx context.Context, scope string) (*models.SyncState, error)
	SaveSyncState(ctx context.Context, state *models.SyncState) error
	ListSyncStates(ctx context.Context) ([]models.SyncState, error)
}

// Repository is the full primary-backend surface.
type Repository interface {
	DrawRepository
	SyncStateRepository
}

// ListDrawsParams pages draws ordered by draw_no. Limit <= 0 means no limit.
type ListDrawsParams struct {
	Limit  int
	Offset int
	Asc    bool
	From   *int
	To     *int
}
