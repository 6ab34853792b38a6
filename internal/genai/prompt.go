package genai

import (
	"fmt"
	"strings"

	"liftlog/api/internal/store"
)

const systemPrompt = `You are a strength and conditioning coach. Respond with a single JSON object:
{"name": string, "description": string, "duration": minutes or null, "focus": string, "blocks": [
  {"name": string, "description": string, "notes": string, "is_amrap": bool, "amrap_duration": minutes or null, "exercises": [
    {"name": string, "description": string, "notes": string, "superset_tag": string or "", "sets": [[weight_kg, reps, duration_sec, distance_m, rest_sec], ...]}
  ]}
]}
Each set is a 5-element array; use null for fields that do not apply. Never use strings for numbers. Every exercise needs at least one set with at least one non-null value.`

func buildUserPrompt(req Request) string {
	var b strings.Builder
	if req.Workout != nil {
		b.WriteString("Current workout:\n")
		b.WriteString(summarizeWorkout(req.Workout))
		b.WriteString("\n")
	}
	if strings.TrimSpace(req.Instructions) != "" {
		fmt.Fprintf(&b, "Instructions: %s\n", req.Instructions)
	} else {
		b.WriteString("Instructions: propose an improved revision of this workout.\n")
	}
	return b.String()
}

// summarizeWorkout renders the tree compactly so the prompt stays small.
func summarizeWorkout(w *store.Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q focus=%s", w.Name, w.Focus)
	if w.Duration != nil {
		fmt.Fprintf(&b, " duration=%dmin", *w.Duration)
	}
	b.WriteString("\n")
	for _, block := range w.Blocks {
		fmt.Fprintf(&b, "- block %q", block.Name)
		if block.IsAmrap && block.AmrapDuration != nil {
			fmt.Fprintf(&b, " (AMRAP %dmin)", *block.AmrapDuration)
		}
		b.WriteString("\n")
		for _, ex := range block.Exercises {
			fmt.Fprintf(&b, "  - %s", ex.Name)
			if ex.SupersetTag != "" {
				fmt.Fprintf(&b, " [superset %s]", ex.SupersetTag)
			}
			fmt.Fprintf(&b, ": %s\n", summarizeSets(ex.Sets))
		}
	}
	return b.String()
}

func summarizeSets(sets []store.Set) string {
	parts := make([]string, 0, len(sets))
	for _, st := range sets {
		var metrics []string
		if st.Weight != nil {
			metrics = append(metrics, fmt.Sprintf("%gkg", *st.Weight))
		}
		if st.Reps != nil {
			metrics = append(metrics, fmt.Sprintf("%dreps", *st.Reps))
		}
		if st.Duration != nil {
			metrics = append(metrics, fmt.Sprintf("%ds", *st.Duration))
		}
		if st.Distance != nil {
			metrics = append(metrics, fmt.Sprintf("%gm", *st.Distance))
		}
		if st.RestTime != nil {
			metrics = append(metrics, fmt.Sprintf("rest%ds", *st.RestTime))
		}
		parts = append(parts, strings.Join(metrics, "/"))
	}
	return strings.Join(parts, ", ")
}
