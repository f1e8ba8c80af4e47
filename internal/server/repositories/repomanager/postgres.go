package repomanager

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/akudrin/bujotrack/internal/dbx"
	pgmigrations "github.com/akudrin/bujotrack/internal/server/migrations/postgres"
	"github.com/akudrin/bujotrack/internal/server/repositories/entries"
	"github.com/akudrin/bujotrack/internal/server/repositories/projects"
	"github.com/akudrin/bujotrack/internal/server/repositories/users"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the given database.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(pgmigrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// ForDSN picks the backend by DSN shape: postgres:// URLs get the Postgres
// manager over the pgx driver, everything else is treated as an SQLite path.
func ForDSN(dsn string) (RepositoryManager, string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgresRepositoryManager(), "pgx"
	}
	return NewSQLiteRepositoryManager(), "sqlite"
}
