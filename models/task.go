package models

import (
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

const maxTaskTitleLength = 200

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Project     primitive.ObjectID  `bson:"project" json:"project"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	DueDate     *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Tags        []string            `bson:"tags" json:"tags"`
	Order       int                 `bson:"order" json:"order"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ValidateTaskTitle(title string) error {
	if title == "" {
		return NewFieldError("task title is required")
	}
	if utf8.RuneCountInString(title) > maxTaskTitleLength {
		return NewFieldError("task title cannot be more than 200 characters")
	}
	return nil
}

// CreateTaskInput is the POST /api/projects/{id}/tasks payload. Project
// and creator come from the route and the authenticated user, never from
// the body.
type CreateTaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	Tags        []string     `json:"tags"`
	AssignedTo  string       `json:"assignedTo"`
}

// Validate checks the payload and fills in the column defaults.
func (in *CreateTaskInput) Validate() error {
	if err := ValidateTaskTitle(in.Title); err != nil {
		return err
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !ValidTaskStatus(in.Status) {
		return NewFieldError("invalid task status")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidTaskPriority(in.Priority) {
		return NewFieldError("invalid task priority")
	}
	return nil
}

// TaskUpdate is the allow-listed payload for PUT /api/tasks/{id}.
// Project and createdBy are immutable and absent. AssignedTo takes a hex
// user id and DueDate an RFC 3339 timestamp; an explicit empty string
// clears either one, since a *time.Time cannot tell null from absent.
type TaskUpdate struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Status      *TaskStatus   `json:"status"`
	Priority    *TaskPriority `json:"priority"`
	DueDate     *string       `json:"dueDate"`
	Tags        *[]string     `json:"tags"`
	AssignedTo  *string       `json:"assignedTo"`
}

func (u *TaskUpdate) Validate() error {
	if u.Title != nil {
		if err := ValidateTaskTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Status != nil && !ValidTaskStatus(*u.Status) {
		return NewFieldError("invalid task status")
	}
	if u.Priority != nil && !ValidTaskPriority(*u.Priority) {
		return NewFieldError("invalid task priority")
	}
	if u.AssignedTo != nil && *u.AssignedTo != "" {
		if _, err := primitive.ObjectIDFromHex(*u.AssignedTo); err != nil {
			return NewFieldError("invalid assignee id")
		}
	}
	if u.DueDate != nil && *u.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, *u.DueDate); err != nil {
			return NewFieldError("due date must be an RFC 3339 timestamp")
		}
	}
	return nil
}

// MovesColumn reports whether the update relocates the task to a
// different status column, which requires a fresh board position.
func (u *TaskUpdate) MovesColumn(t *Task) bool {
	return u.Status != nil && *u.Status != t.Status
}

// Apply copies the present fields onto the task. Assignment and order
// changes are handled by the service since they need store lookups.
func (u *TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		if *u.DueDate == "" {
			t.DueDate = nil
		} else if parsed, err := time.Parse(time.RFC3339, *u.DueDate); err == nil {
			t.DueDate = &parsed
		}
	}
	if u.Tags != nil {
		t.Tags = *u.Tags
	}
	t.UpdatedAt = time.Now()
}
