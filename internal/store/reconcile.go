package store

import "github.com/google/uuid"

// blockPlan is the row-level diff that makes storage match an incoming block
// payload. Matched rows become updates, unmatched incoming rows become
// creates, stored rows absent from the payload become deletes. Updates carry
// the full desired row so applying the plan is a plain write.
type blockPlan struct {
	blockID     int64
	name        string
	description string
	notes       string

	updateExercises []Exercise
	createExercises []exerciseCreate
	deleteExercises []int64

	updateSets []Set
	createSets []setCreate
	deleteSets []int64
}

// exerciseCreate nests its sets because the exercise row id does not exist
// until insert time.
type exerciseCreate struct {
	exercise Exercise
	sets     []Set
}

type setCreate struct {
	exerciseID int64
	set        Set
}

// planBlockReconcile computes the reconciliation diff for one block. It is
// pure: all storage reads happen before, all writes after.
//
// The naive alternative, delete-everything-and-recreate, would invalidate
// every id and uid the client still holds between saves. Matched rows keep
// their identity so repeated saves stay correlated.
func planBlockReconcile(existing *Block, payload BlockPayload) blockPlan {
	plan := blockPlan{
		blockID:     existing.ID,
		name:        payload.Name,
		description: payload.Description,
		notes:       payload.Notes,
	}

	ix := indexExercises(existing.Exercises)
	retained := make(map[int64]bool, len(existing.Exercises))
	positions := make([]int, 0, len(existing.Exercises))
	for _, ex := range existing.Exercises {
		positions = append(positions, ex.Position)
	}

	for _, incoming := range payload.Exercises {
		match := ix.resolve(identityOf(incoming.UID, incoming.ID))
		if match != nil {
			retained[match.ID] = true
			setPlan := planSetReconcile(match, incoming.Sets)
			if setPlan.retained == 0 {
				// Every set under this exercise is gone; an exercise with no
				// sets is not kept either. The cascade removes its sets.
				plan.deleteExercises = append(plan.deleteExercises, match.ID)
				continue
			}

			updated := *match
			updated.Sets = nil
			updated.Name = incoming.Name
			updated.Description = incoming.Description
			updated.Notes = incoming.Notes
			updated.SupersetTag = incoming.SupersetTag
			if incoming.Position != nil {
				updated.Position = *incoming.Position
			}
			if updated.UID == "" {
				// Legacy row matched by numeric id: attach a uid on this write.
				updated.UID = uuid.NewString()
			}
			plan.updateExercises = append(plan.updateExercises, updated)
			plan.updateSets = append(plan.updateSets, setPlan.updates...)
			plan.createSets = append(plan.createSets, setPlan.creates...)
			plan.deleteSets = append(plan.deleteSets, setPlan.deletes...)
			continue
		}

		create := buildExerciseCreate(existing.ID, incoming, positions)
		if create == nil {
			continue
		}
		positions = append(positions, create.exercise.Position)
		plan.createExercises = append(plan.createExercises, *create)
	}

	for _, ex := range existing.Exercises {
		if !retained[ex.ID] {
			plan.deleteExercises = append(plan.deleteExercises, ex.ID)
		}
	}

	return plan
}

type setPlanResult struct {
	updates  []Set
	creates  []setCreate
	deletes  []int64
	retained int
}

// planSetReconcile mirrors the exercise pass one level down, for the sets of
// a matched exercise.
func planSetReconcile(exercise *Exercise, incoming []SetPayload) setPlanResult {
	var result setPlanResult

	ix := indexSets(exercise.Sets)
	kept := make(map[int64]bool, len(exercise.Sets))
	positions := make([]int, 0, len(exercise.Sets))
	for _, st := range exercise.Sets {
		positions = append(positions, st.Position)
	}

	for _, sp := range incoming {
		match := ix.resolve(identityOf(sp.UID, sp.ID))
		if match != nil {
			if !sp.hasMetrics() {
				// All metrics cleared: the set is not retained and the
				// deletion pass below removes it.
				continue
			}
			kept[match.ID] = true
			result.retained++

			updated := *match
			updated.Weight = sp.Weight
			updated.Reps = sp.Reps
			updated.Duration = sp.Duration
			updated.Distance = sp.Distance
			updated.RestTime = sp.RestTime
			updated.Tag = sp.Tag
			// Completion state survives a metrics-only save: a stale client
			// echoing just weight and reps must not un-complete a set. An
			// explicit reopen clears the timestamp so status and completed_at
			// never disagree.
			if sp.CompletedAt != nil {
				updated.CompletedAt = sp.CompletedAt
			}
			if sp.Status != "" {
				updated.Status = sp.Status
				if sp.Status != SetStatusDone && sp.CompletedAt == nil {
					updated.CompletedAt = nil
				}
			}
			if sp.Position != nil {
				updated.Position = *sp.Position
			}
			if updated.UID == "" {
				updated.UID = uuid.NewString()
			}
			result.updates = append(result.updates, updated)
			continue
		}

		if !sp.hasMetrics() {
			continue
		}
		pos := allocatePosition(positions, sp.Position)
		positions = append(positions, pos)
		result.retained++
		result.creates = append(result.creates, setCreate{
			exerciseID: exercise.ID,
			set:        newSetFromPayload(sp, pos),
		})
	}

	for _, st := range exercise.Sets {
		if !kept[st.ID] {
			result.deletes = append(result.deletes, st.ID)
		}
	}

	return result
}

// buildExerciseCreate prepares a brand-new exercise and its sets. No matching
// happens below a new exercise: every incoming set is created directly.
// Returns nil when no set survives the empty-metric check.
func buildExerciseCreate(blockID int64, incoming ExercisePayload, siblingPositions []int) *exerciseCreate {
	uid := incoming.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	create := exerciseCreate{
		exercise: Exercise{
			UID:         uid,
			BlockID:     blockID,
			Name:        incoming.Name,
			Description: incoming.Description,
			Notes:       incoming.Notes,
			SupersetTag: incoming.SupersetTag,
			Position:    allocatePosition(siblingPositions, incoming.Position),
		},
	}

	var setPositions []int
	for _, sp := range incoming.Sets {
		if !sp.hasMetrics() {
			continue
		}
		pos := allocatePosition(setPositions, sp.Position)
		setPositions = append(setPositions, pos)
		create.sets = append(create.sets, newSetFromPayload(sp, pos))
	}
	if len(create.sets) == 0 {
		return nil
	}
	return &create
}

func newSetFromPayload(sp SetPayload, position int) Set {
	uid := sp.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	status := sp.Status
	if status == "" {
		status = SetStatusOpen
	}
	return Set{
		UID:         uid,
		Weight:      sp.Weight,
		Reps:        sp.Reps,
		Duration:    sp.Duration,
		Distance:    sp.Distance,
		RestTime:    sp.RestTime,
		Position:    position,
		Status:      status,
		CompletedAt: sp.CompletedAt,
		Tag:         sp.Tag,
	}
}
