package models

import (
	"encoding/json"
	"time"
)

// timeLayouts are tried in order when a document carries a serialized
// timestamp. Archived documents keep whatever representation they were
// frozen with.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// When is a timestamp that accepts the store's polymorphic representations:
// native times, serialized strings in several layouts, or Unix seconds.
// Anything unparseable decodes to the zero time, which sorts last under
// most-recent-first ordering.
type When time.Time

// NowWhen returns the current UTC instant.
func NowWhen() When {
	return When(time.Now().UTC())
}

// Time unwraps the underlying time value.
func (w When) Time() time.Time {
	return time.Time(w)
}

// IsZero reports whether the timestamp is unknown.
func (w When) IsZero() bool {
	return time.Time(w).IsZero()
}

// After orders two timestamps.
func (w When) After(other When) bool {
	return time.Time(w).After(time.Time(other))
}

// MarshalJSON writes RFC3339, the shape new documents persist with.
func (w When) MarshalJSON() ([]byte, error) {
	if w.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(time.Time(w).Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts any representation ParseWhen understands.
func (w *When) UnmarshalJSON(raw []byte) error {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	*w = When(ParseWhen(value))
	return nil
}

// ParseWhen normalises a polymorphic timestamp value found in store
// documents.
func ParseWhen(value interface{}) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts
			}
		}
	case float64:
		// JSON numbers decode as float64; treat as Unix seconds.
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	}
	return time.Time{}
}

// DocTime extracts and parses a document's timestamp field.
func DocTime(doc Document, field string) time.Time {
	if doc.Data == nil {
		return time.Time{}
	}
	return ParseWhen(doc.Data[field])
}
