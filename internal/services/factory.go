package services

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"todo-list/backend/internal/datetime"
	"todo-list/backend/internal/models"
)

type Clock func() time.Time

type TaskFactory struct {
	now   Clock
	newID func() string
	loc   *time.Location
}

// NewTaskFactory returns a factory; nil arguments fall back to the wall
// clock, random UUIDs and the local time zone.
func NewTaskFactory(now Clock, newID func() string, loc *time.Location) *TaskFactory {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = NewTaskID
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskFactory{now: now, newID: newID, loc: loc}
}

func NewTaskID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return id.String()
}

// Create builds a new task. Callers validate text, date and time first.
// When date and time give no due instant the task is due at its creation
// time.
func (f *TaskFactory) Create(text, date, clock string) models.Task {
	now := f.now().UnixMilli()

	dueAt, ok := datetime.DueInstant(date, clock, f.loc)
	if !ok {
		dueAt = now
	}

	return models.Task{
		ID:        f.newID(),
		Text:      text,
		Completed: false,
		CreatedAt: now,
		DueDate:   date,
		DueTime:   clock,
		DueAt:     dueAt,
	}
}

// Revise returns a copy of t carrying the edited fields. Identity,
// completion and creation time are kept; dueAt falls back to createdAt.
func (f *TaskFactory) Revise(t models.Task, text, date, clock string) models.Task {
	dueAt, ok := datetime.DueInstant(date, clock, f.loc)
	if !ok {
		dueAt = t.CreatedAt
	}

	t.Text = text
	t.DueDate = date
	t.DueTime = clock
	t.DueAt = dueAt
	return t
}

func (f *TaskFactory) Now() time.Time {
	return f.now().In(f.loc)
}

func (f *TaskFactory) Location() *time.Location {
	return f.loc
}
