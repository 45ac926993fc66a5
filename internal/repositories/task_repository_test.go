package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list/backend/internal/models"
	"todo-list/backend/internal/repositories"
	"todo-list/backend/internal/services"
	"todo-list/backend/internal/storage"
)

type brokenStore struct {
	storage.KeyValueStore
	err error
}

func (b brokenStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, b.err }

func (b brokenStore) Set(ctx context.Context, key string, value []byte) error { return b.err }

func TestNewTaskRepository_DefaultKey(t *testing.T) {
	repo := repositories.NewTaskRepository(storage.NewMemoryStore(), "")
	assert.Equal(t, "react-todo-app-tasks", repo.Key())
}

func TestTaskRepository_LoadMissingKey(t *testing.T) {
	repo := repositories.NewTaskRepository(storage.NewMemoryStore(), "")

	raws, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, raws)
	assert.Empty(t, raws)
}

func TestTaskRepository_LoadCorruptBlob(t *testing.T) {
	blobs := []string{`not json`, `{"id":"a"}`, `"[]"`, `[{"id":"a"`}

	for _, blob := range blobs {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(context.Background(), repositories.DefaultStorageKey, []byte(blob)))

		raws, err := repositories.NewTaskRepository(kv, "").Load(context.Background())
		require.NoError(t, err, blob)
		assert.Empty(t, raws, blob)
	}
}

func TestTaskRepository_LoadSkipsNonObjects(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), repositories.DefaultStorageKey, []byte(`[1,{"id":"a"},null,"x"]`)))

	raws, err := repositories.NewTaskRepository(kv, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "a", raws[0].ID())
}

func TestTaskRepository_BackendErrors(t *testing.T) {
	down := errors.New("connection refused")
	repo := repositories.NewTaskRepository(brokenStore{err: down}, "custom")

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, down)

	err = repo.Save(context.Background(), nil)
	assert.ErrorIs(t, err, down)
}

func TestTaskRepository_SaveWritesPersistedLayout(t *testing.T) {
	kv := storage.NewMemoryStore()
	repo := repositories.NewTaskRepository(kv, "")

	require.NoError(t, repo.Save(context.Background(), []models.Task{{
		ID: "a", Text: "Buy milk", CreatedAt: 1000, DueDate: "2024-01-10", DueTime: "09:00", DueAt: 2000,
	}}))

	blob, err := kv.Get(context.Background(), repositories.DefaultStorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","text":"Buy milk","completed":false,"createdAt":1000,"dueDate":"2024-01-10","dueTime":"09:00","dueAt":2000}]`, string(blob))

	require.NoError(t, repo.Save(context.Background(), nil))
	blob, err = kv.Get(context.Background(), repositories.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(blob))
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	kv := storage.NewMemoryStore()
	repo := repositories.NewTaskRepository(kv, "")
	loc := time.FixedZone("JST", 9*60*60)
	now := time.UnixMilli(1_700_000_000_000)

	tasks := []models.Task{
		{ID: "a", Text: "one", CreatedAt: 10, DueDate: "2024-01-10", DueTime: "09:00", DueAt: 20},
		{ID: "b", Text: "two", Completed: true, CreatedAt: 30, DueAt: 30},
	}
	require.NoError(t, repo.Save(context.Background(), tasks))

	raws, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tasks, services.NormalizeAll(raws, now, loc))
}
