package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound covers both a missing row and a row owned by someone else.
// The two cases are indistinguishable on purpose so the API does not leak
// which workouts exist.
var ErrNotFound = errors.New("not found or access denied")

// dbtx is the subset of *sql.DB and *sql.Tx the loaders and writers need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type WorkoutStore struct {
	db *sql.DB
}

func NewWorkoutStore(db *sql.DB) *WorkoutStore {
	return &WorkoutStore{db: db}
}

func (s *WorkoutStore) DB() *sql.DB {
	return s.db
}

// Ping verifies the database connection is alive.
func (s *WorkoutStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateWorkout inserts a workout and any nested blocks in one transaction
// and returns the canonical stored tree.
func (s *WorkoutStore) CreateWorkout(ctx context.Context, workout Workout) (*Workout, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create workout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var workoutID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO workouts (owner_id, plan_id, name, description, duration_minutes, focus, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, workout.OwnerID, workout.PlanID, workout.Name, workout.Description, workout.Duration, workout.Focus, workout.Notes).Scan(&workoutID)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for _, block := range workout.Blocks {
		if err := insertBlockTree(ctx, tx, workoutID, block); err != nil {
			return nil, err
		}
	}

	created, err := loadWorkoutTree(ctx, tx, workout.OwnerID, workoutID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create workout: %w", err)
	}
	return created, nil
}

func (s *WorkoutStore) ListWorkouts(ctx context.Context, ownerID string) ([]WorkoutSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.name, w.focus, w.duration_minutes, w.created_at,
			(SELECT COUNT(*) FROM blocks b WHERE b.workout_id = w.id) AS block_count
		FROM workouts w
		WHERE w.owner_id = $1
		ORDER BY w.created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	items := make([]WorkoutSummary, 0)
	for rows.Next() {
		var item WorkoutSummary
		if err := rows.Scan(&item.ID, &item.Name, &item.Focus, &item.Duration, &item.CreatedAt, &item.BlockCount); err != nil {
			return nil, fmt.Errorf("scan workout summary: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return items, nil
}

// GetWorkout loads the full owner-scoped tree.
func (s *WorkoutStore) GetWorkout(ctx context.Context, ownerID string, workoutID int64) (*Workout, error) {
	return loadWorkoutTree(ctx, s.db, ownerID, workoutID)
}

// DeleteWorkout removes a workout; the foreign keys cascade through blocks,
// exercises and sets.
func (s *WorkoutStore) DeleteWorkout(ctx context.Context, ownerID string, workoutID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id=$1 AND owner_id=$2`, workoutID, ownerID)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workout rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReconcileBlock applies an incremental save of one block: matched exercises
// and sets are updated in place, unmatched incoming rows are created, stored
// rows missing from the payload are deleted. Everything runs in a single
// transaction; the ownership check happens before any write.
func (s *WorkoutStore) ReconcileBlock(ctx context.Context, ownerID string, workoutID, blockID int64, payload BlockPayload) (*Block, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var found int64
	err = tx.QueryRowContext(ctx, `
		SELECT b.id
		FROM blocks b
		JOIN workouts w ON w.id = b.workout_id
		WHERE b.id = $1 AND w.id = $2 AND w.owner_id = $3
	`, blockID, workoutID, ownerID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve block: %w", err)
	}

	existing, err := loadBlockTree(ctx, tx, blockID)
	if err != nil {
		return nil, err
	}

	plan := planBlockReconcile(existing, payload)
	if err := applyBlockPlan(ctx, tx, plan); err != nil {
		return nil, err
	}

	// Reload so the caller observes server-assigned ids, uids and positions
	// rather than an echo of its own input.
	reconciled, err := loadBlockTree(ctx, tx, blockID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}
	return reconciled, nil
}

// ReplaceWorkout swaps the entire block subtree of a workout for the given
// schema. The outgoing tree is kept as a JSON snapshot on the workout row
// before the cascade delete.
func (s *WorkoutStore) ReplaceWorkout(ctx context.Context, ownerID string, workoutID int64, schema WorkoutSchema) (*Workout, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := loadWorkoutTree(ctx, tx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(existing.Blocks)
	if err != nil {
		return nil, fmt.Errorf("marshal backup snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE workout_id=$1`, workoutID); err != nil {
		return nil, fmt.Errorf("clear blocks: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE workouts
		SET name=$2, description=$3, duration_minutes=$4, focus=$5, backup_snapshot=$6
		WHERE id=$1
	`, workoutID, schema.Name, schema.Description, schema.Duration, schema.Focus, snapshot); err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}

	for _, block := range buildReplacementBlocks(schema) {
		if err := insertBlockTree(ctx, tx, workoutID, block); err != nil {
			return nil, err
		}
	}

	replaced, err := loadWorkoutTree(ctx, tx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}
	return replaced, nil
}

func loadWorkoutTree(ctx context.Context, q dbtx, ownerID string, workoutID int64) (*Workout, error) {
	var workout Workout
	err := q.QueryRowContext(ctx, `
		SELECT id, owner_id, plan_id, name, description, duration_minutes, focus, notes, created_at
		FROM workouts
		WHERE id=$1 AND owner_id=$2
	`, workoutID, ownerID).Scan(
		&workout.ID,
		&workout.OwnerID,
		&workout.PlanID,
		&workout.Name,
		&workout.Description,
		&workout.Duration,
		&workout.Focus,
		&workout.Notes,
		&workout.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load workout: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, uid, workout_id, name, description, notes, position, is_amrap, amrap_duration_minutes
		FROM blocks
		WHERE workout_id=$1
		ORDER BY position ASC, id ASC
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()

	workout.Blocks = make([]Block, 0)
	for rows.Next() {
		var block Block
		if err := rows.Scan(&block.ID, &block.UID, &block.WorkoutID, &block.Name, &block.Description, &block.Notes, &block.Position, &block.IsAmrap, &block.AmrapDuration); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		workout.Blocks = append(workout.Blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	for i := range workout.Blocks {
		exercises, err := loadExercises(ctx, q, workout.Blocks[i].ID)
		if err != nil {
			return nil, err
		}
		workout.Blocks[i].Exercises = exercises
	}
	return &workout, nil
}

func loadBlockTree(ctx context.Context, q dbtx, blockID int64) (*Block, error) {
	var block Block
	err := q.QueryRowContext(ctx, `
		SELECT id, uid, workout_id, name, description, notes, position, is_amrap, amrap_duration_minutes
		FROM blocks
		WHERE id=$1
	`, blockID).Scan(&block.ID, &block.UID, &block.WorkoutID, &block.Name, &block.Description, &block.Notes, &block.Position, &block.IsAmrap, &block.AmrapDuration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load block: %w", err)
	}

	exercises, err := loadExercises(ctx, q, blockID)
	if err != nil {
		return nil, err
	}
	block.Exercises = exercises
	return &block, nil
}

func loadExercises(ctx context.Context, q dbtx, blockID int64) ([]Exercise, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, uid, block_id, name, description, notes, superset_tag, position
		FROM exercises
		WHERE block_id=$1
		ORDER BY position ASC, id ASC
	`, blockID)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(&ex.ID, &ex.UID, &ex.BlockID, &ex.Name, &ex.Description, &ex.Notes, &ex.SupersetTag, &ex.Position); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}

	for i := range exercises {
		sets, err := loadSets(ctx, q, exercises[i].ID)
		if err != nil {
			return nil, err
		}
		exercises[i].Sets = sets
	}
	return exercises, nil
}

func loadSets(ctx context.Context, q dbtx, exerciseID int64) ([]Set, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, uid, exercise_id, weight, reps, duration_seconds, distance_meters, rest_seconds, position, status, completed_at, tag
		FROM sets
		WHERE exercise_id=$1
		ORDER BY position ASC, id ASC
	`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}
	defer rows.Close()

	sets := make([]Set, 0)
	for rows.Next() {
		var st Set
		if err := rows.Scan(&st.ID, &st.UID, &st.ExerciseID, &st.Weight, &st.Reps, &st.Duration, &st.Distance, &st.RestTime, &st.Position, &st.Status, &st.CompletedAt, &st.Tag); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}
	return sets, nil
}

// applyBlockPlan executes the diff. Deletes run first so a payload that drops
// and recreates a row with the same uid cannot trip the unique index.
func applyBlockPlan(ctx context.Context, tx dbtx, plan blockPlan) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE blocks SET name=$2, description=$3, notes=$4 WHERE id=$1
	`, plan.blockID, plan.name, plan.description, plan.notes); err != nil {
		return fmt.Errorf("update block: %w", err)
	}

	for _, exerciseID := range plan.deleteExercises {
		if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE id=$1`, exerciseID); err != nil {
			return fmt.Errorf("delete exercise: %w", err)
		}
	}
	for _, setID := range plan.deleteSets {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sets WHERE id=$1`, setID); err != nil {
			return fmt.Errorf("delete set: %w", err)
		}
	}

	for _, ex := range plan.updateExercises {
		if _, err := tx.ExecContext(ctx, `
			UPDATE exercises
			SET uid=$2, name=$3, description=$4, notes=$5, superset_tag=$6, position=$7
			WHERE id=$1
		`, ex.ID, ex.UID, ex.Name, ex.Description, ex.Notes, ex.SupersetTag, ex.Position); err != nil {
			return fmt.Errorf("update exercise: %w", err)
		}
	}
	for _, st := range plan.updateSets {
		if err := updateSet(ctx, tx, st); err != nil {
			return err
		}
	}

	for _, create := range plan.createExercises {
		exerciseID, err := insertExercise(ctx, tx, plan.blockID, create.exercise)
		if err != nil {
			return err
		}
		for _, st := range create.sets {
			if err := insertSet(ctx, tx, exerciseID, st); err != nil {
				return err
			}
		}
	}
	for _, create := range plan.createSets {
		if err := insertSet(ctx, tx, create.exerciseID, create.set); err != nil {
			return err
		}
	}

	return nil
}

func insertBlockTree(ctx context.Context, q dbtx, workoutID int64, block Block) error {
	var blockID int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO blocks (uid, workout_id, name, description, notes, position, is_amrap, amrap_duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, block.UID, workoutID, block.Name, block.Description, block.Notes, block.Position, block.IsAmrap, block.AmrapDuration).Scan(&blockID)
	if err != nil {
		return fmt.Errorf("insert block: %w", err)
	}

	for _, ex := range block.Exercises {
		exerciseID, err := insertExercise(ctx, q, blockID, ex)
		if err != nil {
			return err
		}
		for _, st := range ex.Sets {
			if err := insertSet(ctx, q, exerciseID, st); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertExercise(ctx context.Context, q dbtx, blockID int64, ex Exercise) (int64, error) {
	var exerciseID int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO exercises (uid, block_id, name, description, notes, superset_tag, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, ex.UID, blockID, ex.Name, ex.Description, ex.Notes, ex.SupersetTag, ex.Position).Scan(&exerciseID)
	if err != nil {
		return 0, fmt.Errorf("insert exercise: %w", err)
	}
	return exerciseID, nil
}

func insertSet(ctx context.Context, q dbtx, exerciseID int64, st Set) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sets (uid, exercise_id, weight, reps, duration_seconds, distance_meters, rest_seconds, position, status, completed_at, tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, st.UID, exerciseID, st.Weight, st.Reps, st.Duration, st.Distance, st.RestTime, st.Position, st.Status, st.CompletedAt, st.Tag)
	if err != nil {
		return fmt.Errorf("insert set: %w", err)
	}
	return nil
}

func updateSet(ctx context.Context, tx dbtx, st Set) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE sets
		SET uid=$2, weight=$3, reps=$4, duration_seconds=$5, distance_meters=$6, rest_seconds=$7, position=$8, status=$9, completed_at=$10, tag=$11
		WHERE id=$1
	`, st.ID, st.UID, st.Weight, st.Reps, st.Duration, st.Distance, st.RestTime, st.Position, st.Status, st.CompletedAt, st.Tag)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	return nil
}
