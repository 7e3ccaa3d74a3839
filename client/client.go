// Package client is a typed TaskMaster API client. It mirrors the
// last-known server state (session and task list) and mutates that state
// only after the server confirms the operation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Task is a task row as returned by the API.
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Pagination is the listing metadata returned alongside tasks.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Session identifies the logged-in user.
type Session struct {
	UserID int64
	Email  string
	Token  string
}

// APIError is a decoded error envelope from a non-2xx response.
type APIError struct {
	Status  int
	Kind    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Kind, e.Message)
}

// Client calls the TaskMaster API and caches the confirmed state.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu      sync.RWMutex
	session *Session
	tasks   []Task
}

// New constructs a Client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Logout is a client-local action: the server holds no session state, so
// discarding the token is all there is to do.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.tasks = nil
}

// IsAuthenticated reports whether a session token is held.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// CurrentSession returns a copy of the held session, if any.
func (c *Client) CurrentSession() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Tasks returns a copy of the last fetched task list.
func (c *Client) Tasks() []Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// ListOptions are the optional query parameters for FetchTasks.
type ListOptions struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// FetchTasks lists tasks and replaces the cached list on success.
func (c *Client) FetchTasks(ctx context.Context, opts ListOptions) ([]Task, Pagination, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Priority != "" {
		query.Set("priority", opts.Priority)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/tasks"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var body struct {
		Tasks      []Task     `json:"tasks"`
		Pagination Pagination `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, Pagination{}, err
	}

	c.mu.Lock()
	c.tasks = append([]Task(nil), body.Tasks...)
	c.mu.Unlock()
	return body.Tasks, body.Pagination, nil
}

// TaskParams carries task fields for create and update calls. Nil fields
// are omitted from the request body.
type TaskParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// CreateTask creates a task and appends it to the cached list on success.
func (c *Client) CreateTask(ctx context.Context, params TaskParams) (*Task, error) {
	var body struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", params, &body); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, body.Task)
	c.mu.Unlock()
	return &body.Task, nil
}

// UpdateTask applies a partial update and refreshes the cached entry.
func (c *Client) UpdateTask(ctx context.Context, id int64, params TaskParams) (*Task, error) {
	var body struct {
		Task Task `json:"task"`
	}
	path := "/tasks/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, params, &body); err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = body.Task
			break
		}
	}
	c.mu.Unlock()
	return &body.Task, nil
}

// DeleteTask removes a task and drops it from the cached list on success.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	path := "/tasks/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	filtered := c.tasks[:0]
	for _, task := range c.tasks {
		if task.ID != id {
			filtered = append(filtered, task)
		}
	}
	c.tasks = filtered
	c.mu.Unlock()
	return nil
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var body struct {
		UserID int64  `json:"userId"`
		Token  string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, path, payload, &body); err != nil {
		return nil, err
	}

	session := &Session{UserID: body.UserID, Email: email, Token: body.Token}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reqBody *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.RLock()
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	c.mu.RUnlock()

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode, Kind: "internal_error", Message: http.StatusText(res.StatusCode)}
	var envelope struct {
		Error struct {
			Kind    string            `json:"kind"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err == nil && envelope.Error.Kind != "" {
		apiErr.Kind = envelope.Error.Kind
		apiErr.Message = envelope.Error.Message
		apiErr.Fields = envelope.Error.Fields
	}
	return apiErr
}
