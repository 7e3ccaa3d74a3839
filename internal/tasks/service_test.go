package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// recordingRepo counts persistence calls so tests can assert validation
// happens before any statement runs.
type recordingRepo struct {
	calls int
	tasks map[int64]*Task
	next  int64
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{tasks: make(map[int64]*Task), next: 1}
}

func (r *recordingRepo) Insert(ctx context.Context, task *Task) error {
	r.calls++
	task.ID = r.next
	r.next++
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *recordingRepo) GetByID(ctx context.Context, ownerID, taskID int64) (*Task, error) {
	r.calls++
	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return nil, shared.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *recordingRepo) List(ctx context.Context, ownerID int64, filters ListFilters, limit, offset int) ([]Task, int, error) {
	r.calls++
	return nil, 0, nil
}

func (r *recordingRepo) Update(ctx context.Context, ownerID, taskID int64, params UpdateParams, now time.Time) error {
	r.calls++
	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.DueDate.Set {
		task.DueDate = params.DueDate.Value
	}
	task.UpdatedAt = now
	return nil
}

func (r *recordingRepo) Delete(ctx context.Context, ownerID, taskID int64) error {
	r.calls++
	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, field)
}

func TestCreateDefaults(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	task, err := service.Create(context.Background(), 1, CreateParams{Title: "  Trim me  "})
	require.NoError(t, err)
	assert.Equal(t, "Trim me", task.Title)
	assert.Equal(t, StatusTodo, task.Status, "status is not settable at creation")
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestCreateTitleBounds(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	_, err := service.Create(context.Background(), 1, CreateParams{Title: "   "})
	requireValidationField(t, err, "title")
	assert.Zero(t, repo.calls, "validation rejects before persistence")

	exactly255 := strings.Repeat("x", 255)
	task, err := service.Create(context.Background(), 1, CreateParams{Title: exactly255})
	require.NoError(t, err)
	assert.Equal(t, exactly255, task.Title)

	tooLong := strings.Repeat("x", 256)
	_, err = service.Create(context.Background(), 1, CreateParams{Title: tooLong})
	requireValidationField(t, err, "title")
}

func TestCreateInvalidEnumAndDate(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	bogus := Priority("urgent")
	_, err := service.Create(context.Background(), 1, CreateParams{Title: "ok", Priority: &bogus})
	requireValidationField(t, err, "priority")

	badDate := "01/02/2025"
	_, err = service.Create(context.Background(), 1, CreateParams{Title: "ok", DueDate: &badDate})
	requireValidationField(t, err, "due_date")

	notADate := "2025-02-30"
	_, err = service.Create(context.Background(), 1, CreateParams{Title: "ok", DueDate: &notADate})
	requireValidationField(t, err, "due_date")

	assert.Zero(t, repo.calls)
}

func TestUpdateEmptyFieldSet(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	_, err := service.Update(context.Background(), 1, 1, UpdateParams{})
	requireValidationField(t, err, "fields")
	assert.Zero(t, repo.calls)
}

func TestUpdateValidatesProvidedFields(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	empty := "   "
	_, err := service.Update(context.Background(), 1, 1, UpdateParams{Title: &empty})
	requireValidationField(t, err, "title")

	bogus := Status("done")
	_, err = service.Update(context.Background(), 1, 1, UpdateParams{Status: &bogus})
	requireValidationField(t, err, "status")

	badDate := "2025-13-40"
	_, err = service.Update(context.Background(), 1, 1, UpdateParams{DueDate: NewOptionalDate(&badDate)})
	requireValidationField(t, err, "due_date")

	assert.Zero(t, repo.calls)
}

func TestUpdateDueDate(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	due := "2025-03-01"
	task, err := service.Create(context.Background(), 1, CreateParams{Title: "dated", DueDate: &due})
	require.NoError(t, err)

	title := "renamed"
	updated, err := service.Update(context.Background(), 1, task.ID, UpdateParams{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2025-03-01", *updated.DueDate, "omitted due_date stays untouched")

	updated, err = service.Update(context.Background(), 1, task.ID, UpdateParams{DueDate: NewOptionalDate(nil)})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate, "explicit null clears the date")
}

func TestUpdateAllowsAnyStatusTransition(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	task, err := service.Create(context.Background(), 1, CreateParams{Title: "cycle"})
	require.NoError(t, err)

	for _, status := range []Status{StatusCompleted, StatusTodo, StatusInProgress, StatusTodo} {
		updated, err := service.Update(context.Background(), 1, task.ID, UpdateParams{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestUpdateNotOwnedReportsNotFound(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	task, err := service.Create(context.Background(), 1, CreateParams{Title: "mine"})
	require.NoError(t, err)

	title := "stolen"
	_, err = service.Update(context.Background(), 2, task.ID, UpdateParams{Title: &title})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListValidatesBounds(t *testing.T) {
	repo := newRecordingRepo()
	service := NewService(repo)

	_, err := service.List(context.Background(), 1, ListFilters{}, 0, 10)
	requireValidationField(t, err, "page")

	_, err = service.List(context.Background(), 1, ListFilters{}, 1, 0)
	requireValidationField(t, err, "limit")

	_, err = service.List(context.Background(), 1, ListFilters{}, 1, 101)
	requireValidationField(t, err, "limit")

	bogus := Status("archived")
	_, err = service.List(context.Background(), 1, ListFilters{Status: &bogus}, 1, 10)
	requireValidationField(t, err, "status")

	assert.Zero(t, repo.calls)
}
