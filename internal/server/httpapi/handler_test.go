package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/akudrin/bujotrack/internal/logging"
	"github.com/akudrin/bujotrack/internal/server/config"
	"github.com/akudrin/bujotrack/internal/server/repositories/repomanager"
	"github.com/akudrin/bujotrack/internal/server/services"
)

// newTestServer builds the full stack over an in-memory SQLite database.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), db))

	cfg := &config.Config{BcryptCost: 4}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := NewServer(":0", logger,
		services.NewUserService(db, m, cfg),
		services.NewProjectService(db, m),
		services.NewEntryService(db, m),
	)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func createUser(t *testing.T, h http.Handler, email string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/users/", map[string]any{
		"name": "Alice", "email": email, "timezone": "UTC", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return int64(decode(t, rec)["id"].(float64))
}

func TestCreateUser_OmitsPassword(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/users/", map[string]any{
		"name": "Alice", "email": "alice@x.com", "timezone": "Europe/Riga", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "s3cret")

	got := decode(t, rec)
	assert.Equal(t, "alice@x.com", got["email"])
	assert.Equal(t, true, got["is_active"])
	assert.Equal(t, []any{}, got["entries"])
	assert.Equal(t, []any{}, got["projects"])
}

func TestCreateUser_DuplicateEmailIs400(t *testing.T) {
	h := newTestServer(t)
	createUser(t, h, "dup@x.com")

	rec := doJSON(t, h, http.MethodPost, "/users/", map[string]any{
		"name": "Second", "email": "dup@x.com", "timezone": "UTC", "password": "pw",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode(t, rec)["detail"])
}

func TestGetUser_Missing404(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/users/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["detail"])

	rec = doJSON(t, h, http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers_SkipLimit(t *testing.T) {
	h := newTestServer(t)
	for i := 0; i < 3; i++ {
		createUser(t, h, fmt.Sprintf("u%d@x.com", i))
	}

	rec := doJSON(t, h, http.MethodGet, "/users/?skip=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "u1@x.com", list[0]["email"])

	rec = doJSON(t, h, http.MethodGet, "/users/?skip=banana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEntry_EnumsByNameAndDefaults(t *testing.T) {
	h := newTestServer(t)
	userID := createUser(t, h, "owner@x.com")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "Buy milk", "type": "TASK", "priority": "LOW",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)
	assert.Equal(t, "TASK", got["type"])
	assert.Equal(t, "LOW", got["priority"])
	assert.Nil(t, got["completed"])
	assert.Equal(t, "", got["description"])
	assert.Equal(t, []any{}, got["child_entries"])

	// defaults when the enum fields are omitted
	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "Just a note",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode(t, rec)
	assert.Equal(t, "TASK", got["type"])
	assert.Equal(t, "NONE", got["priority"])
}

func TestCreateEntry_RejectsUnknownEnumName(t *testing.T) {
	h := newTestServer(t)
	userID := createUser(t, h, "owner@x.com")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "x", "priority": "URGENT",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "URGENT")
}

func TestCreateEntry_MissingReferencesAre404(t *testing.T) {
	h := newTestServer(t)
	userID := createUser(t, h, "owner@x.com")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "x", "project_id": 99,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project 99 not found", decode(t, rec)["detail"])

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "x", "parent_entry_id": 77,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Entry 77 not found", decode(t, rec)["detail"])

	rec = doJSON(t, h, http.MethodPost, "/users/555/entries/", map[string]any{"title": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User 555 not found", decode(t, rec)["detail"])
}

func TestListEntries_RootsOnlyWithNestedChildren(t *testing.T) {
	h := newTestServer(t)
	userID := createUser(t, h, "owner@x.com")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{"title": "root"})
	require.Equal(t, http.StatusOK, rec.Code)
	rootID := int64(decode(t, rec)["id"].(float64))

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "child", "parent_entry_id": rootID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/entries/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1, "children must not appear at the top level")
	assert.Equal(t, "root", list[0]["title"])

	children := list[0]["child_entries"].([]any)
	require.Len(t, children, 1)
	assert.Equal(t, "child", children[0].(map[string]any)["title"])
}

func TestCompleteEntry_TogglesAndMissingIs404(t *testing.T) {
	h := newTestServer(t)
	userID := createUser(t, h, "owner@x.com")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{"title": "t"})
	require.Equal(t, http.StatusOK, rec.Code)
	entryID := int64(decode(t, rec)["id"].(float64))

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/entries/%d/complete/", entryID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["completed"])

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/entries/%d/complete/", entryID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["completed"])

	rec = doJSON(t, h, http.MethodPut, "/entries/9999/complete/", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Entry 9999 not found", decode(t, rec)["detail"])
}

func TestCreateProject_AndEntryCarriesProjectStub(t *testing.T) {
	h := newTestServer(t)
	userID := createUser(t, h, "owner@x.com")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/projects/", userID), map[string]any{"title": "P"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)
	projectID := int64(got["id"].(float64))
	assert.Equal(t, []any{}, got["entries"])

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/users/%d/entries/", userID), map[string]any{
		"title": "in project", "project_id": projectID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	project := decode(t, rec)["project"].(map[string]any)
	assert.Equal(t, "P", project["title"])

	rec = doJSON(t, h, http.MethodGet, "/projects/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	entries := list[0]["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "in project", entries[0].(map[string]any)["title"])
}

func TestCreateProject_MissingOwner404(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/users/123/projects/", map[string]any{"title": "P"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User 123 not found", decode(t, rec)["detail"])
}

func TestCORS_PreflightAndHeaders(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/users/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	getRec := doJSON(t, h, http.MethodGet, "/entries/", nil)
	assert.Equal(t, "*", getRec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMalformedBodyIs400(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/users/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
