package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"todo-list/backend/internal/models"
	"todo-list/backend/internal/services"
)

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "1", Text: "Buy milk", CreatedAt: 10, DueAt: 300},
		{ID: "2", Text: "Write report", Completed: true, CreatedAt: 20, DueAt: 100},
		{ID: "3", Text: "call MOM", CreatedAt: 30, DueAt: 200},
		{ID: "4", Text: "Pay bills", Completed: true, CreatedAt: 40, DueAt: 400},
	}
}

func TestDerive_SingleTaskScenario(t *testing.T) {
	tasks := []models.Task{{ID: "1", Text: "Buy milk", DueDate: "2024-01-10", DueTime: "09:00", DueAt: 1}}

	assert.Len(t, services.Derive(tasks, services.FilterAll, "", services.SortAsc, language.Japanese), 1)
	assert.Empty(t, services.Derive(tasks, services.FilterCompleted, "", services.SortAsc, language.Japanese))
}

func TestDerive_DescendingPutsLaterDateFirst(t *testing.T) {
	tasks := []models.Task{
		{ID: "early", DueDate: "2024-01-10", DueAt: 1_704_844_800_000},
		{ID: "late", DueDate: "2024-01-11", DueAt: 1_704_931_200_000},
	}

	got := services.Derive(tasks, services.FilterAll, "", services.SortDesc, language.Japanese)
	assert.Equal(t, []string{"late", "early"}, ids(got))

	got = services.Derive(tasks, services.FilterAll, "", services.SortAsc, language.Japanese)
	assert.Equal(t, []string{"early", "late"}, ids(got))
}

func TestDerive_FilterPartition(t *testing.T) {
	tasks := sampleTasks()

	all := services.Derive(tasks, services.FilterAll, "", services.SortAsc, language.Japanese)
	active := services.Derive(tasks, services.FilterActive, "", services.SortAsc, language.Japanese)
	completed := services.Derive(tasks, services.FilterCompleted, "", services.SortAsc, language.Japanese)

	assert.Len(t, all, len(tasks))
	assert.Equal(t, len(all), len(active)+len(completed))
	for _, a := range active {
		assert.False(t, a.Completed)
		for _, c := range completed {
			assert.NotEqual(t, a.ID, c.ID)
		}
	}
	for _, c := range completed {
		assert.True(t, c.Completed)
	}
}

func TestDerive_KeywordIsCaseInsensitive(t *testing.T) {
	got := services.Derive(sampleTasks(), services.FilterAll, "mOm", services.SortAsc, language.Japanese)
	assert.Equal(t, []string{"3"}, ids(got))

	got = services.Derive(sampleTasks(), services.FilterAll, "", services.SortAsc, language.Japanese)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(got))

	got = services.Derive(sampleTasks(), services.FilterCompleted, "B", services.SortDesc, language.Japanese)
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestDerive_CreatedAtBreaksDueTies(t *testing.T) {
	tasks := []models.Task{
		{ID: "old", Text: "b", CreatedAt: 1, DueAt: 50},
		{ID: "new", Text: "a", CreatedAt: 2, DueAt: 50},
	}

	assert.Equal(t, []string{"old", "new"}, ids(services.Derive(tasks, services.FilterAll, "", services.SortAsc, language.Japanese)))
	assert.Equal(t, []string{"new", "old"}, ids(services.Derive(tasks, services.FilterAll, "", services.SortDesc, language.Japanese)))
}

func TestDerive_TextTieBreakIgnoresDirection(t *testing.T) {
	tasks := []models.Task{
		{ID: "c", Text: "cherry", CreatedAt: 5, DueAt: 50},
		{ID: "a", Text: "apple", CreatedAt: 5, DueAt: 50},
		{ID: "b", Text: "banana", CreatedAt: 5, DueAt: 50},
	}

	for _, order := range []services.SortOrder{services.SortAsc, services.SortDesc} {
		got := services.Derive(tasks, services.FilterAll, "", order, language.Japanese)
		assert.Equal(t, []string{"a", "b", "c"}, ids(got), order)
	}
}

func TestDerive_DoesNotTouchInput(t *testing.T) {
	tasks := sampleTasks()
	before := ids(tasks)

	_ = services.Derive(tasks, services.FilterAll, "", services.SortDesc, language.Japanese)
	assert.Equal(t, before, ids(tasks))
}

func TestDerive_UnknownKeysFallBack(t *testing.T) {
	got := services.Derive(sampleTasks(), services.FilterKey("bogus"), "", services.SortOrder("sideways"), language.Japanese)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(got))
}

func TestOptions(t *testing.T) {
	filters := services.Filters()
	require.Len(t, filters, 3)
	assert.Equal(t, services.Option{Key: "all", Label: "すべて"}, filters[0])
	assert.Equal(t, services.Option{Key: "active", Label: "未完了"}, filters[1])
	assert.Equal(t, services.Option{Key: "completed", Label: "完了済み"}, filters[2])

	orders := services.SortOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, "昇順", orders[0].Label)
	assert.Equal(t, "降順", orders[1].Label)

	filters[0].Label = "changed"
	assert.Equal(t, "すべて", services.Filters()[0].Label)
}

func TestParseKeys(t *testing.T) {
	f, err := services.ParseFilterKey("active")
	require.NoError(t, err)
	assert.Equal(t, services.FilterActive, f)

	_, err = services.ParseFilterKey("ACTIVE")
	assert.Error(t, err)

	o, err := services.ParseSortOrder("desc")
	require.NoError(t, err)
	assert.Equal(t, services.SortDesc, o)

	_, err = services.ParseSortOrder("")
	assert.Error(t, err)
}

func TestViewCache(t *testing.T) {
	cache := services.NewViewCache(2)
	view := []models.Task{{ID: "1"}}

	_, ok := cache.Get(1, services.FilterAll, "", services.SortAsc)
	assert.False(t, ok)

	cache.Put(1, services.FilterAll, "", services.SortAsc, view)
	got, ok := cache.Get(1, services.FilterAll, "", services.SortAsc)
	require.True(t, ok)
	assert.Equal(t, view, got)

	got[0].ID = "mutated"
	again, _ := cache.Get(1, services.FilterAll, "", services.SortAsc)
	assert.Equal(t, "1", again[0].ID)

	_, ok = cache.Get(2, services.FilterAll, "", services.SortAsc)
	assert.False(t, ok, "a newer version drops old entries")

	cache.Put(1, services.FilterAll, "", services.SortAsc, view)
	_, ok = cache.Get(2, services.FilterAll, "", services.SortAsc)
	assert.False(t, ok, "stale puts are ignored")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats["hits"])
	assert.Equal(t, int64(3), stats["misses"])
}
