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

const sqliteEntryColumns = `id, title, description, priority, type, due_date, completed, owner_id, project_id, parent_entry_id, created_on, last_updated`

// SQLiteRepository implements entry storage over a dbx.DBTX. Timestamps are
// stored as RFC3339 text columns.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query :=
		`INSERT INTO entries (title, description, priority, type, due_date, owner_id, project_id, parent_entry_id, created_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 `

	res, err := r.db.ExecContext(ctx, query,
		entry.Title, entry.Description, int(entry.Priority), int(entry.Type),
		timePtrToText(entry.DueDate), entry.OwnerID, nullableID(entry.ProjectID),
		nullableID(entry.ParentEntryID), entry.CreatedOn.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	entry.ID = id

	return entry, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM entries WHERE id = ?`

	entry, err := scanSQLiteEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *SQLiteRepository) ListRoots(ctx context.Context, skip, limit int) ([]*models.Entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM entries
		 WHERE parent_entry_id IS NULL
		 ORDER BY id
		 LIMIT ? OFFSET ?
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectSQLiteEntries(rows)
}

func (r *SQLiteRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.Entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM entries
		 WHERE parent_entry_id = ?
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectSQLiteEntries(rows)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM entries
		 WHERE owner_id = ?
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectSQLiteEntries(rows)
}

func (r *SQLiteRepository) ListByProject(ctx context.Context, projectID int64) ([]*models.Entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM entries
		 WHERE project_id = ?
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectSQLiteEntries(rows)
}

// ToggleCompleted flips completed in a single UPDATE; the follow-up read
// only fetches the row it just changed.
func (r *SQLiteRepository) ToggleCompleted(ctx context.Context, id int64, now time.Time) (*models.Entry, error) {
	nowText := now.UTC().Format(time.RFC3339Nano)
	query :=
		`UPDATE entries
		 SET completed = CASE WHEN completed IS NULL THEN ? ELSE NULL END,
		     last_updated = ?
		 WHERE id = ?
		 `

	res, err := r.db.ExecContext(ctx, query, nowText, nowText, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.GetByID(ctx, id)
}

func scanSQLiteEntry(row rowScanner) (*models.Entry, error) {
	var (
		entry         models.Entry
		priority, typ int
		dueDate       sql.NullString
		completed     sql.NullString
		projectID     sql.NullInt64
		parentEntryID sql.NullInt64
		createdOn     string
		lastUpdated   sql.NullString
	)
	if err := row.Scan(&entry.ID, &entry.Title, &entry.Description, &priority, &typ,
		&dueDate, &completed, &entry.OwnerID, &projectID, &parentEntryID,
		&createdOn, &lastUpdated); err != nil {
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

	if projectID.Valid {
		entry.ProjectID = &projectID.Int64
	}
	if parentEntryID.Valid {
		entry.ParentEntryID = &parentEntryID.Int64
	}

	t, err := time.Parse(time.RFC3339Nano, createdOn)
	if err != nil {
		return nil, fmt.Errorf("parsing created_on: %w", err)
	}
	entry.CreatedOn = t

	if entry.DueDate, err = textToTimePtr(dueDate, "due_date"); err != nil {
		return nil, err
	}
	if entry.Completed, err = textToTimePtr(completed, "completed"); err != nil {
		return nil, err
	}
	if entry.LastUpdated, err = textToTimePtr(lastUpdated, "last_updated"); err != nil {
		return nil, err
	}

	return &entry, nil
}

func collectSQLiteEntries(rows *sql.Rows) ([]*models.Entry, error) {
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		entry, err := scanSQLiteEntry(rows)
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

func timePtrToText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func textToTimePtr(s sql.NullString, column string) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", column, err)
	}
	return &t, nil
}
