package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"todo-list/backend/internal/models"
	"todo-list/backend/internal/storage"
)

// DefaultStorageKey is the key the browser client has always stored its
// task list under.
const DefaultStorageKey = "react-todo-app-tasks"

// TaskRepository reads and writes the whole task list as a single JSON
// array under one key.
type TaskRepository struct {
	kv  storage.KeyValueStore
	key string
}

func NewTaskRepository(kv storage.KeyValueStore, key string) *TaskRepository {
	if key == "" {
		key = DefaultStorageKey
	}
	return &TaskRepository{kv: kv, key: key}
}

// Load returns the stored records. A missing or unreadable blob yields an
// empty list; only a failing backend is reported as an error.
func (r *TaskRepository) Load(ctx context.Context) ([]models.RawTask, error) {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.RawTask{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", r.key, err)
	}

	raws, skipped, err := models.DecodeRawTasks(data)
	if err != nil {
		log.Printf("Discarding unreadable task list under %q: %v", r.key, err)
		return []models.RawTask{}, nil
	}
	if skipped > 0 {
		log.Printf("Skipped %d malformed task records under %q", skipped, r.key)
	}
	return raws, nil
}

// Save overwrites the stored blob with the full collection.
func (r *TaskRepository) Save(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save %q: %w", r.key, err)
	}
	return nil
}

func (r *TaskRepository) Key() string {
	return r.key
}
