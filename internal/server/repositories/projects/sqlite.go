package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/models"
)

// SQLiteRepository implements project storage over a dbx.DBTX. Timestamps
// are stored as RFC3339 text columns.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (title, owner_id, created_on)
		 VALUES (?, ?, ?)
		 `

	res, err := r.db.ExecContext(ctx, query,
		project.Title, project.OwnerID, project.CreatedOn.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	project.ID = id

	return project, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query :=
		`SELECT id, title, owner_id, created_on, last_updated FROM projects
		 WHERE id = ?
		 `

	var (
		project     models.Project
		createdOn   string
		lastUpdated sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Title, &project.OwnerID, &createdOn, &lastUpdated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := fillProjectTimes(&project, createdOn, lastUpdated); err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *SQLiteRepository) List(ctx context.Context, skip, limit int) ([]*models.Project, error) {
	query :=
		`SELECT id, title, owner_id, created_on, last_updated FROM projects
		 ORDER BY id
		 LIMIT ? OFFSET ?
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectSQLiteProjects(rows)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	query :=
		`SELECT id, title, owner_id, created_on, last_updated FROM projects
		 WHERE owner_id = ?
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectSQLiteProjects(rows)
}

func collectSQLiteProjects(rows *sql.Rows) ([]*models.Project, error) {
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		var (
			project     models.Project
			createdOn   string
			lastUpdated sql.NullString
		)
		if err := rows.Scan(&project.ID, &project.Title, &project.OwnerID,
			&createdOn, &lastUpdated); err != nil {
			return nil, err
		}
		if err := fillProjectTimes(&project, createdOn, lastUpdated); err != nil {
			return nil, err
		}
		result = append(result, &project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func fillProjectTimes(project *models.Project, createdOn string, lastUpdated sql.NullString) error {
	t, err := time.Parse(time.RFC3339Nano, createdOn)
	if err != nil {
		return fmt.Errorf("parsing created_on: %w", err)
	}
	project.CreatedOn = t

	if lastUpdated.Valid {
		u, err := time.Parse(time.RFC3339Nano, lastUpdated.String)
		if err != nil {
			return fmt.Errorf("parsing last_updated: %w", err)
		}
		project.LastUpdated = &u
	}
	return nil
}
