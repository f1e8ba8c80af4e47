package entries

import (
	"context"
	"time"

	"github.com/akudrin/bujotrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetByID(ctx context.Context, id int64) (*models.Entry, error)

	// ListRoots returns only entries without a parent, id ascending.
	ListRoots(ctx context.Context, skip, limit int) ([]*models.Entry, error)
	ListChildren(ctx context.Context, parentID int64) ([]*models.Entry, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Entry, error)
	ListByProject(ctx context.Context, projectID int64) ([]*models.Entry, error)

	// ToggleCompleted atomically flips completed between NULL and now,
	// refreshes last_updated, and returns the updated row.
	ToggleCompleted(ctx context.Context, id int64, now time.Time) (*models.Entry, error)
}
