package store

import "time"

const (
	SetStatusOpen = "open"
	SetStatusDone = "done"
)

// Workout is the root of an ownership tree: Workout → Block → Exercise → Set.
// Every child belongs to exactly one parent and is deleted with it.
type Workout struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	PlanID      *int64    `json:"plan_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Duration    *int      `json:"duration,omitempty"`
	Focus       string    `json:"focus"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	Blocks      []Block   `json:"blocks"`
}

// Block groups exercises within a workout. The uid is the stable identity a
// client holds across repeated saves; the numeric id is storage-assigned.
type Block struct {
	ID            int64      `json:"id"`
	UID           string     `json:"uid"`
	WorkoutID     int64      `json:"workout_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Notes         string     `json:"notes"`
	Position      int        `json:"position"`
	IsAmrap       bool       `json:"is_amrap"`
	AmrapDuration *int       `json:"amrap_duration,omitempty"`
	Exercises     []Exercise `json:"exercises"`
}

type Exercise struct {
	ID          int64  `json:"id"`
	UID         string `json:"uid"`
	BlockID     int64  `json:"block_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	// SupersetTag groups exercises performed in rotation rather than in
	// sequence; exercises sharing a tag form one superset.
	SupersetTag string `json:"superset_tag,omitempty"`
	Position    int    `json:"position"`
	Sets        []Set  `json:"sets"`
}

// Set holds the performed metrics. Each metric is independently nullable; a
// set with no metric at all is never persisted.
type Set struct {
	ID          int64      `json:"id"`
	UID         string     `json:"uid"`
	ExerciseID  int64      `json:"exercise_id"`
	Weight      *float64   `json:"weight,omitempty"`
	Reps        *int       `json:"reps,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Distance    *float64   `json:"distance,omitempty"`
	RestTime    *int       `json:"rest_time,omitempty"`
	Position    int        `json:"position"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Tag         string     `json:"tag,omitempty"`
}

// WorkoutSummary is the list-view projection of a workout.
type WorkoutSummary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Focus      string    `json:"focus"`
	Duration   *int      `json:"duration,omitempty"`
	BlockCount int       `json:"block_count"`
	CreatedAt  time.Time `json:"created_at"`
}
