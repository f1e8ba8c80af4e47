package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akudrin/bujotrack/internal/common"
	"github.com/akudrin/bujotrack/internal/server/models"
	"github.com/akudrin/bujotrack/internal/server/services"
)

const defaultPageLimit = 100

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Timezone, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			s.writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}

	resp, err := s.userResponse(r, user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := s.pageParams(w, r)
	if !ok {
		return
	}

	users, err := s.users.ListUsers(r.Context(), skip, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		ur, err := s.userResponse(r, u)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		resp = append(resp, ur)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "User")
	if !ok {
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.internalError(w, r, err)
		return
	}

	resp, err := s.userResponse(r, user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createEntryForUser(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.pathID(w, r, "id", "User")
	if !ok {
		return
	}

	var req EntryCreateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	params := services.CreateEntryParams{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		ProjectID:     req.ProjectID,
		ParentEntryID: req.ParentEntryID,
		OwnerID:       ownerID,
	}
	if req.Type != nil {
		params.Type = *req.Type
	}
	if req.Priority != nil {
		params.Priority = *req.Priority
	}

	entry, err := s.entries.CreateEntry(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrProjectNotFound):
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("Project %d not found", *req.ProjectID))
		case errors.Is(err, common.ErrParentEntryNotFound):
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("Entry %d not found", *req.ParentEntryID))
		case errors.Is(err, common.ErrorNotFound):
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("User %d not found", ownerID))
		default:
			s.internalError(w, r, err)
		}
		return
	}

	resp, err := s.entryResponse(r, entry, map[int64]*ProjectStub{})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := s.pageParams(w, r)
	if !ok {
		return
	}

	roots, err := s.entries.ListRootEntries(r.Context(), skip, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp, err := s.entryResponses(r, roots)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) completeEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "Entry")
	if !ok {
		return
	}

	entry, err := s.entries.ToggleEntryCompletion(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("Entry %d not found", id))
			return
		}
		s.internalError(w, r, err)
		return
	}

	resp, err := s.entryResponse(r, entry, map[int64]*ProjectStub{})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createProjectForUser(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.pathID(w, r, "id", "User")
	if !ok {
		return
	}

	var req ProjectCreateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	project, err := s.projects.CreateProject(r.Context(), req.Title, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("User %d not found", ownerID))
			return
		}
		s.internalError(w, r, err)
		return
	}

	resp, err := s.projectResponse(r, project)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := s.pageParams(w, r)
	if !ok {
		return
	}

	projects, err := s.projects.ListProjects(r.Context(), skip, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		pr, err := s.projectResponse(r, p)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		resp = append(resp, pr)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// --- response assembly ---

// entryResponse converts an entry tree. Project stubs are looked up once
// per project per request through the cache.
func (s *Server) entryResponse(r *http.Request, e *models.Entry, cache map[int64]*ProjectStub) (*EntryResponse, error) {
	resp := &EntryResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Type:         e.Type,
		Priority:     e.Priority,
		DueDate:      e.DueDate,
		Completed:    e.Completed,
		CreatedOn:    e.CreatedOn,
		LastUpdated:  e.LastUpdated,
		OwnerID:      e.OwnerID,
		ChildEntries: make([]*EntryResponse, 0, len(e.ChildEntries)),
	}

	if e.ProjectID != nil {
		stub, ok := cache[*e.ProjectID]
		if !ok {
			project, err := s.projects.GetProject(r.Context(), *e.ProjectID)
			if err != nil {
				return nil, err
			}
			stub = &ProjectStub{ID: project.ID, Title: project.Title}
			cache[*e.ProjectID] = stub
		}
		resp.Project = stub
	}

	for _, child := range e.ChildEntries {
		cr, err := s.entryResponse(r, child, cache)
		if err != nil {
			return nil, err
		}
		resp.ChildEntries = append(resp.ChildEntries, cr)
	}

	return resp, nil
}

func (s *Server) entryResponses(r *http.Request, list []*models.Entry) ([]*EntryResponse, error) {
	cache := map[int64]*ProjectStub{}
	resp := make([]*EntryResponse, 0, len(list))
	for _, e := range list {
		er, err := s.entryResponse(r, e, cache)
		if err != nil {
			return nil, err
		}
		resp = append(resp, er)
	}
	return resp, nil
}

func (s *Server) projectResponse(r *http.Request, p *models.Project) (*ProjectResponse, error) {
	entries, err := s.entries.ListEntriesByProject(r.Context(), p.ID)
	if err != nil {
		return nil, err
	}
	ers, err := s.entryResponses(r, entries)
	if err != nil {
		return nil, err
	}

	return &ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		CreatedOn:   p.CreatedOn,
		LastUpdated: p.LastUpdated,
		OwnerID:     p.OwnerID,
		Entries:     ers,
	}, nil
}

func (s *Server) userResponse(r *http.Request, u *models.User) (*UserResponse, error) {
	entries, err := s.entries.ListEntriesByOwner(r.Context(), u.ID)
	if err != nil {
		return nil, err
	}
	ers, err := s.entryResponses(r, entries)
	if err != nil {
		return nil, err
	}

	projects, err := s.projects.ListProjectsByOwner(r.Context(), u.ID)
	if err != nil {
		return nil, err
	}
	stubs := make([]ProjectStub, 0, len(projects))
	for _, p := range projects {
		stubs = append(stubs, ProjectStub{ID: p.ID, Title: p.Title})
	}

	return &UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Timezone:    u.Timezone,
		IsActive:    u.IsActive,
		CreatedOn:   u.CreatedOn,
		LastUpdated: u.LastUpdated,
		Entries:     ers,
		Projects:    stubs,
	}, nil
}

// --- request plumbing ---

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID parses a numeric path segment. A non-numeric id cannot name any
// row, so it reports "not found" rather than a malformed request.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusNotFound, entity+" not found")
		return 0, false
	}
	return id, true
}

// pageParams reads optional skip/limit query parameters (defaults 0/100).
func (s *Server) pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	skip, ok := s.queryInt(w, r, "skip", 0)
	if !ok {
		return 0, 0, false
	}
	limit, ok := s.queryInt(w, r, "limit", defaultPageLimit)
	if !ok {
		return 0, 0, false
	}
	return skip, limit, true
}

func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s parameter", name))
		return 0, false
	}
	return v, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, ErrorResponse{Detail: detail})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), err.Error())
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
