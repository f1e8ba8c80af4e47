// Package users provides user persistence over PostgreSQL and SQLite.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/models"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user and returns it with the generated id. A unique
// index violation on email yields common.ErrorEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, email, timezone, hashed_password, is_active, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Timezone, user.HashedPassword, user.IsActive, user.CreatedOn).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, name, email, timezone, hashed_password, is_active, created_on, last_updated FROM users
		 WHERE id = $1
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail is a case-sensitive exact match on the unique email index.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, timezone, hashed_password, is_active, created_on, last_updated FROM users
		 WHERE email = $1
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// List returns users ordered by id ascending, offset by skip.
func (r *PostgresRepository) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	query :=
		`SELECT id, name, email, timezone, hashed_password, is_active, created_on, last_updated FROM users
		 ORDER BY id
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		var lastUpdated sql.NullTime
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Timezone,
			&user.HashedPassword, &user.IsActive, &user.CreatedOn, &lastUpdated); err != nil {
			return nil, err
		}
		if lastUpdated.Valid {
			user.LastUpdated = &lastUpdated.Time
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var lastUpdated sql.NullTime
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Timezone,
		&user.HashedPassword, &user.IsActive, &user.CreatedOn, &lastUpdated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lastUpdated.Valid {
		user.LastUpdated = &lastUpdated.Time
	}

	return user, nil
}
