package workout

import (
	"encoding/json"
	"fmt"
)

// FromFields decodes a workout from entity store fields. Records may keep
// their fields flat or nested under "data"; nested values win.
func FromFields(id string, fields map[string]any) (*Workout, error) {
	merged := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "data" {
			merged[k] = v
		}
	}
	if nested, ok := fields["data"].(map[string]any); ok {
		for k, v := range nested {
			merged[k] = v
		}
	}

	// some writers store the structured fields as encoded JSON strings
	for _, key := range []string{"timer_sections", "workout_config"} {
		if s, ok := merged[key].(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				return nil, fmt.Errorf("decoding %s of workout %s: %w", key, id, err)
			}
			merged[key] = decoded
		}
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding workout %s: %w", id, err)
	}
	var w Workout
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding workout %s: %w", id, err)
	}
	if id != "" {
		w.ID = id
	}
	return &w, nil
}

// Fields flattens the workout into entity store fields, without the id
func (w Workout) Fields() (map[string]any, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encoding workout %q: %w", w.Name, err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding workout %q: %w", w.Name, err)
	}
	delete(fields, "id")
	return fields, nil
}
