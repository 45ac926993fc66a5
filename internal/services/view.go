package services

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"todo-list/backend/internal/models"
)

// DefaultLocale orders task texts that tie on both instants.
var DefaultLocale = language.Japanese

// Derive returns the tasks to display: those matching filter whose text
// contains keyword (case-insensitively), ordered by dueAt, then createdAt,
// both in the direction of order, then by text in ascending collation
// order for locale. tasks is not modified.
func Derive(tasks []models.Task, filter FilterKey, keyword string, order SortOrder, locale language.Tag) []models.Task {
	needle := strings.ToLower(keyword)

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		out = append(out, t)
	}

	dir := 1
	if order == SortDesc {
		dir = -1
	}
	// A Collator keeps scratch buffers, so each call gets its own.
	coll := collate.New(locale)

	slices.SortStableFunc(out, func(a, b models.Task) int {
		if c := cmp.Compare(a.DueAt, b.DueAt); c != 0 {
			return c * dir
		}
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c * dir
		}
		return coll.CompareString(a.Text, b.Text)
	})
	return out
}
