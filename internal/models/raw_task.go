package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

var knownFields = map[string]struct{}{
	"id":        {},
	"text":      {},
	"completed": {},
	"createdAt": {},
	"dueDate":   {},
	"dueTime":   {},
	"dueAt":     {},
}

// RawTask is a stored record as found in storage, possibly written by an
// older version. Accessors treat a field holding the wrong JSON type the
// same as a missing field.
type RawTask map[string]json.RawMessage

// DecodeRawTasks parses a storage blob. The blob must be a JSON array;
// elements that are not objects are skipped and counted in skipped.
func DecodeRawTasks(data []byte) (tasks []RawTask, skipped int, err error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, 0, fmt.Errorf("decode task list: %w", err)
	}

	tasks = make([]RawTask, 0, len(elems))
	for _, elem := range elems {
		var rec RawTask
		if err := json.Unmarshal(elem, &rec); err != nil || rec == nil {
			skipped++
			continue
		}
		tasks = append(tasks, rec)
	}
	return tasks, skipped, nil
}

// ToRaw converts a task back into its stored form.
func ToRaw(t Task) RawTask {
	data, err := json.Marshal(t)
	if err != nil {
		return RawTask{}
	}
	var rec RawTask
	if err := json.Unmarshal(data, &rec); err != nil {
		return RawTask{}
	}
	return rec
}

// ID returns the record id. Numeric ids from older records come back as
// their decimal text.
func (r RawTask) ID() string {
	if s, ok := r.String("id"); ok {
		return s
	}
	if n, ok := r.number("id"); ok {
		return n.String()
	}
	return ""
}

func (r RawTask) String(key string) (string, bool) {
	raw, ok := r[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) {
		return "", false
	}
	return s, true
}

func (r RawTask) Bool(key string) (bool, bool) {
	raw, ok := r[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil || isNull(raw) {
		return false, false
	}
	return b, true
}

// Int64 reports a numeric field as an integer instant. Fractional values
// are truncated toward zero.
func (r RawTask) Int64(key string) (int64, bool) {
	n, ok := r.number(key)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func (r RawTask) number(key string) (json.Number, bool) {
	raw := bytes.TrimSpace(r[key])
	// json.Number also accepts quoted numbers; a string is not a number here.
	if len(raw) == 0 || raw[0] == '"' || isNull(raw) {
		return "", false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n, true
}

// Extras returns the fields that are not part of the known task layout.
func (r RawTask) Extras() map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	for k, v := range r {
		if _, known := knownFields[k]; known {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
