package tasks

import (
	"bytes"
	"encoding/json"
	"time"
)

// Status is the task workflow state. Any transition between states is
// permitted; the service does not enforce an ordering.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is the task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// MaxTitleLength bounds the title after trimming.
const MaxTitleLength = 255

// Task is a single owned task row. OwnerID never appears in responses;
// visibility is enforced by the owner predicate on every query.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     *string   `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateParams carries the caller-supplied fields for task creation.
// Status is not settable at creation; new tasks always start as todo.
type CreateParams struct {
	Title       string
	Description string
	Priority    *Priority
	DueDate     *string
}

// OptionalDate is a due-date update field that tells an absent JSON key
// apart from an explicit null: absent leaves the stored value alone, null
// clears it.
type OptionalDate struct {
	Set   bool
	Value *string
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// NewOptionalDate builds a set OptionalDate; a nil value clears the date.
func NewOptionalDate(value *string) OptionalDate {
	return OptionalDate{Set: true, Value: value}
}

// UpdateParams is the typed partial update. Only provided fields are
// applied; arbitrary caller-supplied keys never reach a statement.
type UpdateParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     OptionalDate
}

// Empty reports whether no field was provided.
func (p UpdateParams) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && !p.DueDate.Set
}

// ListFilters are the optional equality constraints for listings.
type ListFilters struct {
	Status   *Status
	Priority *Priority
}
