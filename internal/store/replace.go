package store

import (
	"log"

	"github.com/google/uuid"
)

// BlocksFromSchema builds block rows from an identity-free schema. Used when
// creating a workout from scratch; accepted revisions go through the same
// builder inside ReplaceWorkout.
func BlocksFromSchema(schema WorkoutSchema) []Block {
	return buildReplacementBlocks(schema)
}

// buildReplacementBlocks turns a generated schema into fresh rows for a
// wholesale replacement. Identity is deliberately never carried over: an
// accepted revision is a structural alternative, not an edit, and must not
// masquerade as a user-edited version of the old tree.
//
// Empty leaves are pruned bottom-up: a set with no metric is dropped, an
// exercise left with no sets is dropped, a block left with no exercises is
// dropped. Every surviving set starts in "open" status regardless of what
// the schema claims, because a freshly accepted revision has not been
// executed yet.
func buildReplacementBlocks(schema WorkoutSchema) []Block {
	blocks := make([]Block, 0, len(schema.Blocks))
	for i, bs := range schema.Blocks {
		block := Block{
			UID:           uuid.NewString(),
			Name:          bs.Name,
			Description:   bs.Description,
			Notes:         bs.Notes,
			Position:      positionOrIndex(bs.Position, i),
			IsAmrap:       bs.IsAmrap,
			AmrapDuration: bs.AmrapDuration,
		}
		for j, es := range bs.Exercises {
			exercise := Exercise{
				UID:         uuid.NewString(),
				Name:        es.Name,
				Description: es.Description,
				Notes:       es.Notes,
				SupersetTag: es.SupersetTag,
				Position:    positionOrIndex(es.Position, j),
			}
			for k, ss := range es.Sets {
				set, ok, err := setFromSchema(ss)
				if err != nil {
					log.Printf("replace: skipping set %d of exercise %q: %v", k, es.Name, err)
					continue
				}
				if !ok {
					continue
				}
				set.UID = uuid.NewString()
				set.Position = len(exercise.Sets)
				exercise.Sets = append(exercise.Sets, set)
			}
			if len(exercise.Sets) == 0 {
				continue
			}
			block.Exercises = append(block.Exercises, exercise)
		}
		if len(block.Exercises) == 0 {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}
