package models

import (
	"encoding/json"
)

// Task is a single entry of the task list. The JSON layout is the persisted
// layout, so a Task marshals straight into the storage blob.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
	DueDate   string `json:"dueDate"`
	DueTime   string `json:"dueTime"`
	DueAt     int64  `json:"dueAt"`

	// Extra keeps stored fields this version does not know about so that a
	// save writes them back. Never mutated after decoding.
	Extra map[string]json.RawMessage `json:"-"`
}

type taskFields Task

func (t Task) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(taskFields(t))
	if err != nil || len(t.Extra) == 0 {
		return known, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}

	merged := make(map[string]json.RawMessage, len(t.Extra)+len(fields))
	for k, v := range t.Extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// TaskInput is what the user submits when creating or editing a task.
type TaskInput struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Time string `json:"time"`
}
