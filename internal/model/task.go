package model

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the allowed values in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label is the human readable name shown in forms.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// IsTaskCompleted reports whether a raw status value means the task is done.
func IsTaskCompleted(status string) bool {
	return Status(status) == StatusCompleted
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     Date      `json:"due_date"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Task) String() string {
	return t.Title
}

// TaskFields is a task as it arrives from the outside world: forms, JSON bodies,
// bulk imports and remote feeds. Nothing is parsed yet.
type TaskFields struct {
	Title       string `json:"title" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"required,notblank"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status,omitempty" validate:"oneof=pending in_progress completed"`
}

// UnmarshalJSON fills in StatusPending when the record has no "status" key.
// An explicit empty string is kept so that validation rejects it.
func (f *TaskFields) UnmarshalJSON(data []byte) error {
	type raw TaskFields
	r := raw{Status: string(StatusPending)}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*f = TaskFields(r)
	return nil
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
}

// Patch turns a full field-set into a patch that sets every field.
func (f TaskFields) Patch() TaskPatch {
	return TaskPatch{
		Title:       &f.Title,
		Description: &f.Description,
		DueDate:     &f.DueDate,
		Status:      &f.Status,
	}
}

// Apply merges the patch over t and returns the result as raw fields.
func (p TaskPatch) Apply(t Task) TaskFields {
	f := TaskFields{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.String(),
		Status:      string(t.Status),
	}
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.DueDate != nil {
		f.DueDate = *p.DueDate
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	return f
}

type TaskFilter struct {
	Status *Status
}
