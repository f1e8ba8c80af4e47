package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/server/models"
	"github.com/akudrin/bujotrack/internal/server/repositories/repomanager"
)

// ProjectService provides project creation and lookups. Ownership checks
// are enforced uniformly: a project cannot be created for a missing user.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager) *ProjectService {
	return &ProjectService{db: db, repomanager: m}
}

// CreateProject inserts a project owned by ownerID. The owner must exist.
func (s *ProjectService) CreateProject(ctx context.Context, title string, ownerID int64) (*models.Project, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error checking owner: %w", err)
	}

	project := &models.Project{
		Title:     title,
		OwnerID:   ownerID,
		CreatedOn: time.Now(),
	}

	p, err := s.repomanager.Projects(s.db).Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return p, nil
}

// GetProject returns the project with the given id or ErrorNotFound.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	return s.repomanager.Projects(s.db).GetByID(ctx, id)
}

// ListProjects returns projects ordered by id ascending. A non-positive
// limit yields an empty list.
func (s *ProjectService) ListProjects(ctx context.Context, skip, limit int) ([]*models.Project, error) {
	skip, limit, ok := normalizePage(skip, limit)
	if !ok {
		return []*models.Project{}, nil
	}
	return s.repomanager.Projects(s.db).List(ctx, skip, limit)
}

// ListProjectsByOwner returns all projects owned by a user.
func (s *ProjectService) ListProjectsByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	return s.repomanager.Projects(s.db).ListByOwner(ctx, ownerID)
}
