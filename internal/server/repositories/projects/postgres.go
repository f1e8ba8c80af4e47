// Package projects provides project persistence over PostgreSQL and SQLite.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/models"
)

// PostgresRepository implements project storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (title, owner_id, created_on)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		project.Title, project.OwnerID, project.CreatedOn).Scan(&project.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query :=
		`SELECT id, title, owner_id, created_on, last_updated FROM projects
		 WHERE id = $1
		 `

	project := &models.Project{}
	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Title, &project.OwnerID, &project.CreatedOn, &lastUpdated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lastUpdated.Valid {
		project.LastUpdated = &lastUpdated.Time
	}

	return project, nil
}

// List returns projects ordered by id ascending, offset by skip.
func (r *PostgresRepository) List(ctx context.Context, skip, limit int) ([]*models.Project, error) {
	query :=
		`SELECT id, title, owner_id, created_on, last_updated FROM projects
		 ORDER BY id
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectProjects(rows)
}

// ListByOwner returns all projects owned by a user, id ascending.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	query :=
		`SELECT id, title, owner_id, created_on, last_updated FROM projects
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]*models.Project, error) {
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		project := &models.Project{}
		var lastUpdated sql.NullTime
		if err := rows.Scan(&project.ID, &project.Title, &project.OwnerID,
			&project.CreatedOn, &lastUpdated); err != nil {
			return nil, err
		}
		if lastUpdated.Valid {
			project.LastUpdated = &lastUpdated.Time
		}
		result = append(result, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
