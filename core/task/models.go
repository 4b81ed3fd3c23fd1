package task

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/taskforge/backend/core"
)

// Status is the closed set of task states. Free-text status coming from
// clients or storage is normalized through ParseStatus; anything outside the
// known set maps to StatusUnknown so callers handle it as a checked case.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusUnknown    Status = "unknown"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus normalizes a raw status value to its canonical spelling.
// The legacy camel-case spelling of "in-progress" is accepted as equivalent.
func ParseStatus(s string) Status {
	switch core.CleanString(s, true /* lower */) {
	case "pending":
		return StatusPending
	case "in-progress", "inprogress":
		return StatusInProgress
	case "completed":
		return StatusCompleted
	}
	return StatusUnknown
}

// Priority is the closed set of task priorities, normalized like Status.
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityUnknown Priority = "unknown"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func ParsePriority(s string) Priority {
	switch core.CleanString(s, true /* lower */) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	}
	return PriorityUnknown
}

type Task struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description null.String `json:"description,omitempty"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`
	DueDate     null.Time   `json:"due_date"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   null.Time   `json:"updated_at"` // UTC
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether the task is past due at the reference instant.
// Completed tasks are never overdue, whatever their due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted() && t.DueDate.Valid && t.DueDate.Time.Before(now)
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string      `json:"title" validate:"required"`
	Description null.String `json:"description"`
	Status      string      `json:"status" validate:"omitempty,taskstatus"`
	Priority    string      `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     null.Time   `json:"due_date"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
// Zero-valued fields are left untouched.
type UpdateTask struct {
	Title       string      `json:"title"`
	Description null.String `json:"description"`
	Status      string      `json:"status" validate:"omitempty,taskstatus"`
	Priority    string      `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     null.Time   `json:"due_date"`
}

func (ut *UpdateTask) Validate(origTask Task, validate *validator.Validate) error {
	title := core.CleanString(ut.Title)
	if title != "" {
		ut.Title = title
	} else {
		ut.Title = origTask.Title
	}
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	ut.Priority = core.CleanString(ut.Priority, true /* lower */)
	return validate.Struct(ut)
}

type QueryFilter struct {
	Search   string    `query:"search"`
	Status   string    `query:"status"`
	Priority string    `query:"priority"`
	DueFrom  time.Time `query:"due_from"`
	DueTo    time.Time `query:"due_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Priority == "" && qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Priority = core.CleanString(qf.Priority, true /* lower */)
}
