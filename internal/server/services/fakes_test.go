package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/models"
	entriesrepo "github.com/akudrin/bujotrack/internal/server/repositories/entries"
	projectsrepo "github.com/akudrin/bujotrack/internal/server/repositories/projects"
	usersrepo "github.com/akudrin/bujotrack/internal/server/repositories/users"
)

// In-memory fakes used by the service tests. They ignore the DBTX handle,
// so the services can be constructed around a nil *sql.DB as long as no
// transaction is opened; tests that exercise dbx.WithTx use sqlmock.

type fakeUsersRepo struct {
	byID    map[int64]*models.User
	byEmail map[string]*models.User

	created   []*models.User
	createErr error
	nextID    int64
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}, byEmail: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = f.nextID
	f.nextID++
	f.created = append(f.created, u)
	return f.add(u), nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	var all []*models.User
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.byID[id]; ok {
			all = append(all, u)
		}
	}
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type fakeProjectsRepo struct {
	byID   map[int64]*models.Project
	nextID int64
}

func newFakeProjectsRepo() *fakeProjectsRepo {
	return &fakeProjectsRepo{byID: map[int64]*models.Project{}, nextID: 1}
}

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.ID = f.nextID
	f.nextID++
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProjectsRepo) List(ctx context.Context, skip, limit int) ([]*models.Project, error) {
	var all []*models.Project
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.byID[id]; ok {
			all = append(all, p)
		}
	}
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeProjectsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	var result []*models.Project
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.byID[id]; ok && p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	return result, nil
}

type fakeEntriesRepo struct {
	byID   map[int64]*models.Entry
	nextID int64
}

func newFakeEntriesRepo() *fakeEntriesRepo {
	return &fakeEntriesRepo{byID: map[int64]*models.Entry{}, nextID: 1}
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	e.ID = f.nextID
	f.nextID++
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEntriesRepo) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEntriesRepo) all() []*models.Entry {
	var result []*models.Entry
	for id := int64(1); id < f.nextID; id++ {
		if e, ok := f.byID[id]; ok {
			result = append(result, e)
		}
	}
	return result
}

func (f *fakeEntriesRepo) ListRoots(ctx context.Context, skip, limit int) ([]*models.Entry, error) {
	var roots []*models.Entry
	for _, e := range f.all() {
		if e.ParentEntryID == nil {
			roots = append(roots, e)
		}
	}
	if skip >= len(roots) {
		return nil, nil
	}
	roots = roots[skip:]
	if limit < len(roots) {
		roots = roots[:limit]
	}
	return roots, nil
}

func (f *fakeEntriesRepo) ListChildren(ctx context.Context, parentID int64) ([]*models.Entry, error) {
	var result []*models.Entry
	for _, e := range f.all() {
		if e.ParentEntryID != nil && *e.ParentEntryID == parentID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeEntriesRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Entry, error) {
	var result []*models.Entry
	for _, e := range f.all() {
		if e.OwnerID == ownerID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeEntriesRepo) ListByProject(ctx context.Context, projectID int64) ([]*models.Entry, error) {
	var result []*models.Entry
	for _, e := range f.all() {
		if e.ProjectID != nil && *e.ProjectID == projectID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeEntriesRepo) ToggleCompleted(ctx context.Context, id int64, now time.Time) (*models.Entry, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if e.Completed == nil {
		e.Completed = &now
	} else {
		e.Completed = nil
	}
	e.LastUpdated = &now
	return e, nil
}

type fakeRepoManager struct {
	users    *fakeUsersRepo
	projects *fakeProjectsRepo
	entries  *fakeEntriesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsersRepo(),
		projects: newFakeProjectsRepo(),
		entries:  newFakeEntriesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.users }

func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository { return m.projects }

func (m *fakeRepoManager) Entries(db dbx.DBTX) entriesrepo.Repository { return m.entries }
