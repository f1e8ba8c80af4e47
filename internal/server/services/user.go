// Package services contains server-side business logic. This file implements
// UserService: signup with duplicate-email protection and bcrypt hashing,
// plus lookups and paginated listing.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/server/config"
	"github.com/akudrin/bujotrack/internal/server/models"
	"github.com/akudrin/bujotrack/internal/server/repositories/repomanager"
)

// UserService provides user operations:
// - Register: create a user, rejecting duplicate emails
// - GetUser / GetUserByEmail: lookups
// - ListUsers: pk-ascending pagination
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		bcryptCost:  cfg.BcryptCost,
	}
}

// Register creates a new user. The plaintext password is hashed with bcrypt
// and never stored. An already registered email yields ErrorEmailTaken; the
// unique index backstops the pre-check under concurrency.
func (s *UserService) Register(ctx context.Context, name, email, timezone, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrorEmailTaken
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		Timezone:       timezone,
		HashedPassword: string(hashed),
		IsActive:       true,
		CreatedOn:      time.Now(),
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			return nil, common.ErrorEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// GetUser returns the user with the given id or ErrorNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// GetUserByEmail is a case-sensitive exact-match lookup, used internally
// for the duplicate check.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

// ListUsers returns users ordered by id ascending. A non-positive limit
// yields an empty list.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	skip, limit, ok := normalizePage(skip, limit)
	if !ok {
		return []*models.User{}, nil
	}
	return s.repomanager.Users(s.db).List(ctx, skip, limit)
}
