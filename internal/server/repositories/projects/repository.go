package projects

import (
	"context"

	"github.com/akudrin/bujotrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, skip, limit int) ([]*models.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error)
}
