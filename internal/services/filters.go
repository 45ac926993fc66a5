package services

import (
	"fmt"

	"todo-list/backend/internal/models"
)

type FilterKey string

const (
	FilterAll       FilterKey = "all"
	FilterActive    FilterKey = "active"
	FilterCompleted FilterKey = "completed"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Option is a selectable value together with the label the UI shows for it.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var filterOptions = []Option{
	{Key: string(FilterAll), Label: "すべて"},
	{Key: string(FilterActive), Label: "未完了"},
	{Key: string(FilterCompleted), Label: "完了済み"},
}

var sortOptions = []Option{
	{Key: string(SortAsc), Label: "昇順"},
	{Key: string(SortDesc), Label: "降順"},
}

func Filters() []Option {
	return append([]Option(nil), filterOptions...)
}

func SortOrders() []Option {
	return append([]Option(nil), sortOptions...)
}

func ParseFilterKey(s string) (FilterKey, error) {
	switch FilterKey(s) {
	case FilterAll, FilterActive, FilterCompleted:
		return FilterKey(s), nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Matches reports whether t belongs to the filter. Unknown keys match
// everything.
func (f FilterKey) Matches(t models.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
