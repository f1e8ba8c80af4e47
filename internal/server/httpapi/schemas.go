package httpapi

import (
	"time"

	"github.com/akudrin/bujotrack/internal/server/models"
)

// Request bodies. Enum fields are pointers so an omitted field falls back
// to its default (type TASK, priority NONE) while an unknown name is a
// decode error, never a silent coercion.

type UserCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
	Password string `json:"password"`
}

type EntryCreateRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Type          *models.EntryType     `json:"type"`
	Priority      *models.EntryPriority `json:"priority"`
	DueDate       *time.Time            `json:"due_date"`
	ProjectID     *int64                `json:"project_id"`
	ParentEntryID *int64                `json:"parent_entry_id"`
}

type ProjectCreateRequest struct {
	Title string `json:"title"`
}

// Response shapes. The password hash is never serialized. Enumerations
// serialize by name through their MarshalJSON.

// ProjectStub is the id+title form embedded in entries and user listings.
type ProjectStub struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type EntryResponse struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Type         models.EntryType     `json:"type"`
	Priority     models.EntryPriority `json:"priority"`
	DueDate      *time.Time           `json:"due_date"`
	Completed    *time.Time           `json:"completed"`
	CreatedOn    time.Time            `json:"created_on"`
	LastUpdated  *time.Time           `json:"last_updated"`
	OwnerID      int64                `json:"owner_id"`
	Project      *ProjectStub         `json:"project,omitempty"`
	ChildEntries []*EntryResponse     `json:"child_entries"`
}

type ProjectResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	CreatedOn   time.Time        `json:"created_on"`
	LastUpdated *time.Time       `json:"last_updated"`
	OwnerID     int64            `json:"owner_id"`
	Entries     []*EntryResponse `json:"entries"`
}

type UserResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Timezone    string           `json:"timezone"`
	IsActive    bool             `json:"is_active"`
	CreatedOn   time.Time        `json:"created_on"`
	LastUpdated *time.Time       `json:"last_updated"`
	Entries     []*EntryResponse `json:"entries"`
	Projects    []ProjectStub    `json:"projects"`
}

// ErrorResponse is the uniform error body: {"detail": "..."}.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
