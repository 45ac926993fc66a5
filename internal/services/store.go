package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"todo-list/backend/internal/models"
)

const flushTimeout = 10 * time.Second

// TaskRepository persists the whole collection as one unit.
type TaskRepository interface {
	Load(ctx context.Context) ([]models.RawTask, error)
	Save(ctx context.Context, tasks []models.Task) error
}

// TaskStore owns the ordered task collection. Every change replaces the
// slice and the touched record instead of mutating them, then writes the
// full collection through the repository.
type TaskStore struct {
	mu      sync.RWMutex
	tasks   []models.Task
	version uint64

	repo    TaskRepository
	factory *TaskFactory

	flushFailures int64
}

func NewTaskStore(repo TaskRepository, factory *TaskFactory) *TaskStore {
	if factory == nil {
		factory = NewTaskFactory(nil, nil, nil)
	}
	return &TaskStore{
		tasks:   []models.Task{},
		repo:    repo,
		factory: factory,
	}
}

// Hydrate replaces the collection with the normalized stored records. On a
// repository error the collection is left empty and the error returned.
func (s *TaskStore) Hydrate(ctx context.Context) (int, error) {
	raws, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	if err != nil {
		s.tasks = []models.Task{}
		return 0, fmt.Errorf("hydrate tasks: %w", err)
	}
	s.tasks = NormalizeAll(raws, s.factory.Now(), s.factory.Location())
	return len(s.tasks), nil
}

func (s *TaskStore) Add(ctx context.Context, input models.TaskInput) (models.Task, error) {
	text, date, clock, err := validateInput(input)
	if err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.factory.Create(text, date, clock)

	next := make([]models.Task, 0, len(s.tasks)+1)
	next = append(next, task)
	next = append(next, s.tasks...)

	s.commit(ctx, next)
	return task, nil
}

func (s *TaskStore) Toggle(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}

	updated := s.tasks[i]
	updated.Completed = !updated.Completed

	s.commit(ctx, s.replaced(i, updated))
	return updated, nil
}

func (s *TaskStore) Edit(ctx context.Context, id string, input models.TaskInput) (models.Task, error) {
	text, date, clock, err := validateInput(input)
	if err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}

	updated := s.factory.Revise(s.tasks[i], text, date, clock)

	s.commit(ctx, s.replaced(i, updated))
	return updated, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}

	next := make([]models.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)

	s.commit(ctx, next)
	return nil
}

// ClearCompleted removes every completed task and returns how many were
// removed. Nothing is written when there is nothing to remove.
func (s *TaskStore) ClearCompleted(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}

	removed := len(s.tasks) - len(next)
	if removed > 0 {
		s.commit(ctx, next)
	}
	return removed
}

func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Task(nil), s.tasks...)
}

// Snapshot returns the collection together with the version it belongs to.
func (s *TaskStore) Snapshot() ([]models.Task, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Task(nil), s.tasks...), s.version
}

func (s *TaskStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *TaskStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

func (s *TaskStore) FlushFailures() int64 {
	return atomic.LoadInt64(&s.flushFailures)
}

func (s *TaskStore) Factory() *TaskFactory {
	return s.factory
}

// commit installs next and writes it out. Must be called with mu held.
func (s *TaskStore) commit(ctx context.Context, next []models.Task) {
	s.tasks = next
	s.version++

	// The write outlives the caller: a request that is cancelled after the
	// collection changed must not leave storage behind memory.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if err := s.repo.Save(saveCtx, next); err != nil {
		atomic.AddInt64(&s.flushFailures, 1)
		log.Printf("Failed to persist %d tasks: %v", len(next), err)
	}
}

func (s *TaskStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) replaced(i int, t models.Task) []models.Task {
	next := append([]models.Task(nil), s.tasks...)
	next[i] = t
	return next
}

func validateInput(input models.TaskInput) (text, date, clock string, err error) {
	text = strings.TrimSpace(input.Text)
	date = strings.TrimSpace(input.Date)
	clock = strings.TrimSpace(input.Time)

	switch {
	case text == "":
		err = fmt.Errorf("%w: text is required", ErrInvalidInput)
	case date == "":
		err = fmt.Errorf("%w: date is required", ErrInvalidInput)
	case clock == "":
		err = fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	return text, date, clock, err
}
