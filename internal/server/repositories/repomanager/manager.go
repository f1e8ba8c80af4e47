// Package repomanager wires repositories to a concrete storage backend and
// owns schema migrations for it.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/repositories/entries"
	"github.com/akudrin/bujotrack/internal/server/repositories/projects"
	"github.com/akudrin/bujotrack/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Entries(db dbx.DBTX) entries.Repository
}
