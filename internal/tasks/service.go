package tasks

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// Service enforces validation and ownership scoping over the task store.
// Validation always runs before any persistence call.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListResult is one page of tasks plus pagination metadata.
type ListResult struct {
	Tasks      []Task
	Pagination shared.Pagination
}

// List returns the owner's tasks filtered, ordered newest first and
// paginated. Filter values outside their enums, page < 1 or limit outside
// [1, 100] are rejected.
func (s *Service) List(ctx context.Context, ownerID int64, filters ListFilters, page, limit int) (*ListResult, error) {
	verr := &shared.ValidationError{}
	if filters.Status != nil && !filters.Status.Valid() {
		verr.Add("status", "must be one of: todo in_progress completed")
	}
	if filters.Priority != nil && !filters.Priority.Valid() {
		verr.Add("priority", "must be one of: low medium high")
	}
	if page < 1 {
		verr.Add("page", "must be a positive integer")
	}
	if limit < 1 || limit > MaxLimit {
		verr.Add("limit", "must be between 1 and 100")
	}
	if !verr.Empty() {
		return nil, verr
	}

	offset := (page - 1) * limit
	items, total, err := s.repo.List(ctx, ownerID, filters, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Tasks:      items,
		Pagination: shared.NewPagination(page, limit, total),
	}, nil
}

// Get fetches a single owned task.
func (s *Service) Get(ctx context.Context, ownerID, taskID int64) (*Task, error) {
	return s.repo.GetByID(ctx, ownerID, taskID)
}

// Create validates and persists a new task. Status is always todo and
// priority defaults to medium.
func (s *Service) Create(ctx context.Context, ownerID int64, params CreateParams) (*Task, error) {
	verr := &shared.ValidationError{}

	title := strings.TrimSpace(params.Title)
	validateTitle(verr, title)

	priority := PriorityMedium
	if params.Priority != nil {
		if !params.Priority.Valid() {
			verr.Add("priority", "must be one of: low medium high")
		} else {
			priority = *params.Priority
		}
	}

	dueDate, err := normalizeDueDate(params.DueDate)
	if err != nil {
		verr.Add("due_date", "must be a valid calendar date (YYYY-MM-DD)")
	}

	if !verr.Empty() {
		return nil, verr
	}

	now := time.Now().UTC()
	task := &Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Status:      StatusTodo,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a typed partial update to an owned task and returns the
// refreshed row. An empty field set is a validation error; a task owned by
// someone else reports shared.ErrNotFound, never a distinct forbidden kind.
func (s *Service) Update(ctx context.Context, ownerID, taskID int64, params UpdateParams) (*Task, error) {
	if params.Empty() {
		return nil, shared.NewValidationError("fields", "at least one updatable field must be provided")
	}

	verr := &shared.ValidationError{}
	if params.Title != nil {
		trimmed := strings.TrimSpace(*params.Title)
		validateTitle(verr, trimmed)
		params.Title = &trimmed
	}
	if params.Description != nil {
		trimmed := strings.TrimSpace(*params.Description)
		params.Description = &trimmed
	}
	if params.Status != nil && !params.Status.Valid() {
		verr.Add("status", "must be one of: todo in_progress completed")
	}
	if params.Priority != nil && !params.Priority.Valid() {
		verr.Add("priority", "must be one of: low medium high")
	}
	if params.DueDate.Set && params.DueDate.Value != nil {
		dueDate, err := normalizeDueDate(params.DueDate.Value)
		if err != nil {
			verr.Add("due_date", "must be a valid calendar date (YYYY-MM-DD)")
		} else {
			params.DueDate.Value = dueDate
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	if err := s.repo.Update(ctx, ownerID, taskID, params, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, ownerID, taskID)
}

// Delete permanently removes an owned task.
func (s *Service) Delete(ctx context.Context, ownerID, taskID int64) error {
	return s.repo.Delete(ctx, ownerID, taskID)
}

func validateTitle(verr *shared.ValidationError, title string) {
	if title == "" {
		verr.Add("title", "is required")
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		verr.Add("title", "must be at most 255 characters")
	}
}

// normalizeDueDate validates the YYYY-MM-DD form and round-trips it so the
// stored value is exactly what a fetch returns.
func normalizeDueDate(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, *raw)
	if err != nil {
		return nil, err
	}
	normalized := parsed.Format(DateLayout)
	return &normalized, nil
}
