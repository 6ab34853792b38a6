package store

import "time"

// BlockPayload is an incremental save of one block. Exercises and sets carry
// their uid (or legacy numeric id) so the reconciler can match them against
// stored rows; anything unmatched is created, anything omitted is deleted.
type BlockPayload struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Notes       string            `json:"notes"`
	Exercises   []ExercisePayload `json:"exercises"`
}

type ExercisePayload struct {
	UID         string       `json:"uid,omitempty"`
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Notes       string       `json:"notes"`
	SupersetTag string       `json:"superset_tag,omitempty"`
	Position    *int         `json:"position,omitempty"`
	Sets        []SetPayload `json:"sets"`
}

type SetPayload struct {
	UID         string     `json:"uid,omitempty"`
	ID          int64      `json:"id,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	Reps        *int       `json:"reps,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Distance    *float64   `json:"distance,omitempty"`
	RestTime    *int       `json:"rest_time,omitempty"`
	Position    *int       `json:"position,omitempty"`
	Status      string     `json:"status,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Tag         string     `json:"tag,omitempty"`
}

// hasMetrics reports whether at least one metric was provided. Payload values
// are taken literally here: an explicit zero is a value, unlike on the
// generated-output path where zero means absent.
func (p SetPayload) hasMetrics() bool {
	return p.Weight != nil || p.Reps != nil || p.Duration != nil || p.Distance != nil || p.RestTime != nil
}

// WorkoutSchema is a wholesale replacement tree, typically produced by the
// generator. It carries no identity fields: accepting a revision always
// creates fresh rows.
type WorkoutSchema struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Duration    *int          `json:"duration,omitempty"`
	Focus       string        `json:"focus"`
	Blocks      []BlockSchema `json:"blocks"`
}

type BlockSchema struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Notes         string           `json:"notes"`
	IsAmrap       bool             `json:"is_amrap,omitempty"`
	AmrapDuration *int             `json:"amrap_duration,omitempty"`
	Position      *int             `json:"position,omitempty"`
	Exercises     []ExerciseSchema `json:"exercises"`
}

type ExerciseSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Notes       string      `json:"notes"`
	SupersetTag string      `json:"superset_tag,omitempty"`
	Position    *int        `json:"position,omitempty"`
	Sets        []SetSchema `json:"sets"`
}
