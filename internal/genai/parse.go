package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"liftlog/api/internal/store"
)

// ParseSchema decodes a model response into a workout schema. Responses are
// expected to be bare JSON, but a markdown code fence around the object is
// tolerated since models add one now and then.
func ParseSchema(raw string) (store.WorkoutSchema, error) {
	cleaned := stripFence(strings.TrimSpace(raw))

	var schema store.WorkoutSchema
	if err := json.Unmarshal([]byte(cleaned), &schema); err != nil {
		return store.WorkoutSchema{}, fmt.Errorf("unmarshal schema: %w", err)
	}
	if len(schema.Blocks) == 0 {
		return store.WorkoutSchema{}, fmt.Errorf("schema has no blocks")
	}
	return schema, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
