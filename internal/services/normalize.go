package services

import (
	"time"

	"todo-list/backend/internal/datetime"
	"todo-list/backend/internal/models"
)

// Normalize completes a stored record into a task every other part of the
// code can rely on. It is the only place where records written by older
// versions are reconciled with the current layout.
//
// A numeric dueAt already in the record is kept as is. Otherwise dueAt is
// derived from dueDate and dueTime, then falls back to createdAt, then to
// now.
func Normalize(raw models.RawTask, now time.Time, loc *time.Location) models.Task {
	dueDate, _ := raw.String("dueDate")
	dueTime, _ := raw.String("dueTime")
	text, _ := raw.String("text")
	completed, _ := raw.Bool("completed")
	createdAt, hasCreatedAt := raw.Int64("createdAt")

	dueAt, ok := raw.Int64("dueAt")
	if !ok {
		dueAt, ok = datetime.DueInstant(dueDate, dueTime, loc)
	}
	if !ok {
		if hasCreatedAt {
			dueAt = createdAt
		} else {
			dueAt = now.UnixMilli()
		}
	}

	return models.Task{
		ID:        raw.ID(),
		Text:      text,
		Completed: completed,
		CreatedAt: createdAt,
		DueDate:   dueDate,
		DueTime:   dueTime,
		DueAt:     dueAt,
		Extra:     raw.Extras(),
	}
}

func NormalizeAll(raws []models.RawTask, now time.Time, loc *time.Location) []models.Task {
	tasks := make([]models.Task, 0, len(raws))
	for _, raw := range raws {
		tasks = append(tasks, Normalize(raw, now, loc))
	}
	return tasks
}
