// Package entries provides entry persistence over PostgreSQL and SQLite,
// including the completion toggle and the queries that discover an entry's
// children through its parent reference.
package entries

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

const pgEntryColumns = `id, title, description, priority, type, due_date, completed, owner_id, project_id, parent_entry_id, created_on, last_updated`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query :=
		`INSERT INTO entries (title, description, priority, type, due_date, owner_id, project_id, parent_entry_id, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.Title, entry.Description, int(entry.Priority), int(entry.Type),
		entry.DueDate, entry.OwnerID, entry.ProjectID, entry.ParentEntryID,
		entry.CreatedOn).Scan(&entry.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM entries WHERE id = $1`

	entry, err := scanPgEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// ListRoots returns entries whose parent reference is NULL, id ascending.
func (r *PostgresRepository) ListRoots(ctx context.Context, skip, limit int) ([]*models.Entry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM entries
		 WHERE parent_entry_id IS NULL
		 ORDER BY id
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectPgEntries(rows)
}

func (r *PostgresRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.Entry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM entries
		 WHERE parent_entry_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectPgEntries(rows)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Entry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM entries
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectPgEntries(rows)
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID int64) ([]*models.Entry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM entries
		 WHERE project_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectPgEntries(rows)
}

// ToggleCompleted flips completed in a single UPDATE so concurrent toggles
// serialize at the statement level. A missing id yields common.ErrorNotFound.
func (r *PostgresRepository) ToggleCompleted(ctx context.Context, id int64, now time.Time) (*models.Entry, error) {
	query :=
		`UPDATE entries
		 SET completed = CASE WHEN completed IS NULL THEN $2 ELSE NULL END,
		     last_updated = $2
		 WHERE id = $1
		 RETURNING ` + pgEntryColumns

	entry, err := scanPgEntry(r.db.QueryRowContext(ctx, query, id, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPgEntry(row rowScanner) (*models.Entry, error) {
	var (
		entry          models.Entry
		priority, typ  int
		dueDate        sql.NullTime
		completed      sql.NullTime
		projectID      sql.NullInt64
		parentEntryID  sql.NullInt64
		lastUpdated    sql.NullTime
	)
	if err := row.Scan(&entry.ID, &entry.Title, &entry.Description, &priority, &typ,
		&dueDate, &completed, &entry.OwnerID, &projectID, &parentEntryID,
		&entry.CreatedOn, &lastUpdated); err != nil {
		return nil, err
	}

	p, err := models.EntryPriorityFromInt(priority)
	if err != nil {
		return nil, err
	}
	entry.Priority = p
	ty, err := models.EntryTypeFromInt(typ)
	if err != nil {
		return nil, err
	}
	entry.Type = ty

	if dueDate.Valid {
		entry.DueDate = &dueDate.Time
	}
	if completed.Valid {
		entry.Completed = &completed.Time
	}
	if projectID.Valid {
		entry.ProjectID = &projectID.Int64
	}
	if parentEntryID.Valid {
		entry.ParentEntryID = &parentEntryID.Int64
	}
	if lastUpdated.Valid {
		entry.LastUpdated = &lastUpdated.Time
	}
	return &entry, nil
}

func collectPgEntries(rows *sql.Rows) ([]*models.Entry, error) {
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		entry, err := scanPgEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
