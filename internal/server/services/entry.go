package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/dbx"
	"github.com/akudrin/bujotrack/internal/server/models"
	"github.com/akudrin/bujotrack/internal/server/repositories/entries"
	"github.com/akudrin/bujotrack/internal/server/repositories/repomanager"
)

// EntryService provides entry creation, lookups, root listing, and the
// completion toggle. Reads that return entries attach children recursively
// by querying for rows whose parent reference equals the entry id.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, repomanager: m}
}

// CreateEntryParams carries the caller-supplied fields for a new entry.
// ProjectID and ParentEntryID are optional references that must resolve
// when present.
type CreateEntryParams struct {
	Title         string
	Description   string
	Priority      models.EntryPriority
	Type          models.EntryType
	DueDate       *time.Time
	ProjectID     *int64
	ParentEntryID *int64
	OwnerID       int64
}

// CreateEntry validates the owner and the optional project/parent
// references and inserts the entry. The checks and the insert run inside a
// single transaction so a referenced row cannot disappear in between.
// A new entry starts Incomplete (completed = NULL).
func (s *EntryService) CreateEntry(ctx context.Context, p CreateEntryParams) (*models.Entry, error) {
	if p.Priority == 0 {
		p.Priority = models.PriorityNone
	}
	if p.Type == 0 {
		p.Type = models.TypeTask
	}

	entry := &models.Entry{
		Title:         p.Title,
		Description:   p.Description,
		Priority:      p.Priority,
		Type:          p.Type,
		DueDate:       p.DueDate,
		OwnerID:       p.OwnerID,
		ProjectID:     p.ProjectID,
		ParentEntryID: p.ParentEntryID,
		CreatedOn:     time.Now(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).GetByID(ctx, p.OwnerID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("error checking owner: %w", err)
		}

		if p.ProjectID != nil {
			if _, err := s.repomanager.Projects(tx).GetByID(ctx, *p.ProjectID); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return common.ErrProjectNotFound
				}
				return fmt.Errorf("error checking project: %w", err)
			}
		}

		if p.ParentEntryID != nil {
			if _, err := s.repomanager.Entries(tx).GetByID(ctx, *p.ParentEntryID); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return common.ErrParentEntryNotFound
				}
				return fmt.Errorf("error checking parent entry: %w", err)
			}
		}

		created, err := s.repomanager.Entries(tx).Create(ctx, entry)
		if err != nil {
			return fmt.Errorf("error creating entry: %w", err)
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntry returns the entry with the given id, children attached, or
// ErrorNotFound.
func (s *EntryService) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	repo := s.repomanager.Entries(s.db)
	entry, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, repo, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListRootEntries returns entries without a parent, id ascending, children
// attached. A non-positive limit yields an empty list.
func (s *EntryService) ListRootEntries(ctx context.Context, skip, limit int) ([]*models.Entry, error) {
	skip, limit, ok := normalizePage(skip, limit)
	if !ok {
		return []*models.Entry{}, nil
	}

	repo := s.repomanager.Entries(s.db)
	roots, err := repo.ListRoots(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := s.attachChildren(ctx, repo, root); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

// ListEntriesByOwner returns all entries owned by a user, children attached.
func (s *EntryService) ListEntriesByOwner(ctx context.Context, ownerID int64) ([]*models.Entry, error) {
	repo := s.repomanager.Entries(s.db)
	list, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, entry := range list {
		if err := s.attachChildren(ctx, repo, entry); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ListEntriesByProject returns all entries grouped under a project.
func (s *EntryService) ListEntriesByProject(ctx context.Context, projectID int64) ([]*models.Entry, error) {
	repo := s.repomanager.Entries(s.db)
	list, err := repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, entry := range list {
		if err := s.attachChildren(ctx, repo, entry); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ToggleEntryCompletion flips the entry between Incomplete and Completed.
// The second of two toggles returns completed to NULL, not to any earlier
// timestamp. A missing id yields ErrorNotFound.
func (s *EntryService) ToggleEntryCompletion(ctx context.Context, id int64) (*models.Entry, error) {
	repo := s.repomanager.Entries(s.db)
	entry, err := repo.ToggleCompleted(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, repo, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// attachChildren fills entry.ChildEntries by parent queries, depth first.
// Re-parenting does not exist, so the parent chain cannot loop back and the
// recursion terminates.
func (s *EntryService) attachChildren(ctx context.Context, repo entries.Repository, entry *models.Entry) error {
	children, err := repo.ListChildren(ctx, entry.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.attachChildren(ctx, repo, child); err != nil {
			return err
		}
	}
	entry.ChildEntries = children
	return nil
}
