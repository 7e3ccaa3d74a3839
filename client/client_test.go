package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T) (*httptest.Server, *map[string]string) {
	t.Helper()
	seenHeaders := make(map[string]string)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"kind": "auth_error", "message": "invalid credentials"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Login successful", "userId": 7, "token": "test-token",
		})
	})
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		seenHeaders["list"] = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tasks": []map[string]any{
				{"id": 1, "title": "first", "status": "todo", "priority": "medium"},
				{"id": 2, "title": "second", "status": "completed", "priority": "high"},
			},
			"pagination": map[string]int{"page": 1, "limit": 10, "total": 2, "pages": 1},
		})
	})
	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		seenHeaders["create"] = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Task created successfully",
			"task":    map[string]any{"id": 3, "title": "third", "status": "todo", "priority": "medium"},
		})
	})
	mux.HandleFunc("PUT /tasks/2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Task updated successfully",
			"task":    map[string]any{"id": 2, "title": "renamed", "status": "completed", "priority": "high"},
		})
	})
	mux.HandleFunc("DELETE /tasks/1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Task deleted successfully"})
	})
	mux.HandleFunc("DELETE /tasks/9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"kind": "not_found", "message": "resource not found"},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &seenHeaders
}

func TestLoginStoresSession(t *testing.T) {
	server, _ := newFakeAPI(t)
	c := New(server.URL)

	require.False(t, c.IsAuthenticated())

	session, err := c.Login(context.Background(), "user@test.local", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.UserID)
	assert.True(t, c.IsAuthenticated())

	held, ok := c.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, "test-token", held.Token)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	server, _ := newFakeAPI(t)
	c := New(server.URL)

	_, err := c.Login(context.Background(), "user@test.local", "wrongpass")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "auth_error", apiErr.Kind)
	assert.False(t, c.IsAuthenticated())
}

func TestLogoutIsClientLocal(t *testing.T) {
	server, _ := newFakeAPI(t)
	c := New(server.URL)

	_, err := c.Login(context.Background(), "user@test.local", "password123")
	require.NoError(t, err)

	c.Logout()
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.Tasks())
}

func TestTaskStoreMirrorsConfirmedState(t *testing.T) {
	server, headers := newFakeAPI(t)
	c := New(server.URL)

	_, err := c.Login(context.Background(), "user@test.local", "password123")
	require.NoError(t, err)

	fetched, pagination, err := c.FetchTasks(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, fetched, 2)
	assert.Equal(t, 1, pagination.Pages)
	assert.Equal(t, "Bearer test-token", (*headers)["list"])
	assert.Len(t, c.Tasks(), 2)

	created, err := c.CreateTask(context.Background(), TaskParams{Title: strptr("third")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.Len(t, c.Tasks(), 3, "confirmed create appends to the cache")

	updated, err := c.UpdateTask(context.Background(), 2, TaskParams{Title: strptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	for _, task := range c.Tasks() {
		if task.ID == 2 {
			assert.Equal(t, "renamed", task.Title)
		}
	}

	require.NoError(t, c.DeleteTask(context.Background(), 1))
	for _, task := range c.Tasks() {
		assert.NotEqual(t, int64(1), task.ID)
	}
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	server, _ := newFakeAPI(t)
	c := New(server.URL)

	_, err := c.Login(context.Background(), "user@test.local", "password123")
	require.NoError(t, err)
	_, _, err = c.FetchTasks(context.Background(), ListOptions{})
	require.NoError(t, err)

	err = c.DeleteTask(context.Background(), 9)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.Kind)
	assert.Len(t, c.Tasks(), 2, "failed delete does not mutate the cache")
}

func strptr(s string) *string { return &s }
