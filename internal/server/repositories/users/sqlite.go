package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "modernc.org/sqlite"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/models"
)

// SQLiteRepository implements user storage over a dbx.DBTX. Timestamps are
// stored as RFC3339 text columns.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, email, timezone, hashed_password, is_active, created_on)
		 VALUES (?, ?, ?, ?, ?, ?)
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Timezone, user.HashedPassword, boolToInt(user.IsActive),
		user.CreatedOn.UTC().Format(time.RFC3339Nano))
	if err != nil {
		var sqErr *sqlite3.Error
		if errors.As(err, &sqErr) {
			// 19 = SQLITE_CONSTRAINT, 2067 = SQLITE_CONSTRAINT_UNIQUE
			if code := sqErr.Code(); code == 19 || code == 2067 {
				return nil, common.ErrorEmailTaken
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.ID = id

	return user, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, name, email, timezone, hashed_password, is_active, created_on, last_updated FROM users
		 WHERE id = ?
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, timezone, hashed_password, is_active, created_on, last_updated FROM users
		 WHERE email = ?
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteRepository) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	query :=
		`SELECT id, name, email, timezone, hashed_password, is_active, created_on, last_updated FROM users
		 ORDER BY id
		 LIMIT ? OFFSET ?
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		var (
			user        models.User
			isActive    int64
			createdOn   string
			lastUpdated sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Timezone,
			&user.HashedPassword, &isActive, &createdOn, &lastUpdated); err != nil {
			return nil, err
		}
		if err := fillUserTimes(&user, isActive, createdOn, lastUpdated); err != nil {
			return nil, err
		}
		result = append(result, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user        models.User
		isActive    int64
		createdOn   string
		lastUpdated sql.NullString
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Timezone,
		&user.HashedPassword, &isActive, &createdOn, &lastUpdated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := fillUserTimes(&user, isActive, createdOn, lastUpdated); err != nil {
		return nil, err
	}

	return &user, nil
}

func fillUserTimes(user *models.User, isActive int64, createdOn string, lastUpdated sql.NullString) error {
	user.IsActive = isActive != 0

	t, err := time.Parse(time.RFC3339Nano, createdOn)
	if err != nil {
		return fmt.Errorf("parsing created_on: %w", err)
	}
	user.CreatedOn = t

	if lastUpdated.Valid {
		u, err := time.Parse(time.RFC3339Nano, lastUpdated.String)
		if err != nil {
			return fmt.Errorf("parsing last_updated: %w", err)
		}
		user.LastUpdated = &u
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
