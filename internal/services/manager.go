package services

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"todo-list/backend/internal/datetime"
	"todo-list/backend/internal/models"
)

type ManagerConfig struct {
	Locale        language.Tag
	ViewCacheSize int
}

// TaskManager is the surface the UI talks to: derived views, counts,
// form defaults and the store mutations.
type TaskManager struct {
	store  *TaskStore
	views  *ViewCache
	locale language.Tag
}

func NewTaskManager(store *TaskStore, cfg ManagerConfig) *TaskManager {
	locale := cfg.Locale
	if locale == language.Und {
		locale = DefaultLocale
	}
	return &TaskManager{
		store:  store,
		views:  NewViewCache(cfg.ViewCacheSize),
		locale: locale,
	}
}

func (m *TaskManager) GetView(filter FilterKey, keyword string, order SortOrder) []models.Task {
	tasks, version := m.store.Snapshot()
	if view, ok := m.views.Get(version, filter, keyword, order); ok {
		return view
	}

	view := Derive(tasks, filter, keyword, order, m.locale)
	m.views.Put(version, filter, keyword, order, view)
	return view
}

func (m *TaskManager) GetActiveCount() int {
	return m.store.ActiveCount()
}

func (m *TaskManager) GetDefaultDate() string {
	return datetime.DefaultDate(m.store.Factory().Now())
}

func (m *TaskManager) GetDefaultTime() string {
	return datetime.DefaultTime(m.store.Factory().Now())
}

func (m *TaskManager) Filters() []Option {
	return Filters()
}

func (m *TaskManager) SortOrders() []Option {
	return SortOrders()
}

func (m *TaskManager) Add(ctx context.Context, input models.TaskInput) (models.Task, error) {
	return m.store.Add(ctx, input)
}

func (m *TaskManager) Toggle(ctx context.Context, id string) (models.Task, error) {
	return m.store.Toggle(ctx, id)
}

func (m *TaskManager) Edit(ctx context.Context, id string, input models.TaskInput) (models.Task, error) {
	return m.store.Edit(ctx, id, input)
}

func (m *TaskManager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *TaskManager) ClearCompleted(ctx context.Context) int {
	return m.store.ClearCompleted(ctx)
}

func (m *TaskManager) Location() *time.Location {
	return m.store.Factory().Location()
}

// Stats reports collection and cache figures for the metrics endpoint.
func (m *TaskManager) Stats() map[string]interface{} {
	tasks, version := m.store.Snapshot()
	active := 0
	for _, t := range tasks {
		if !t.Completed {
			active++
		}
	}
	return map[string]interface{}{
		"total":          len(tasks),
		"active":         active,
		"completed":      len(tasks) - active,
		"version":        version,
		"flush_failures": m.store.FlushFailures(),
		"view_cache":     m.views.Stats(),
	}
}
