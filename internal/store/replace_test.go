package store

import "testing"

func TestBuildReplacementBlocksAssignsFreshIdentity(t *testing.T) {
	schema := WorkoutSchema{
		Blocks: []BlockSchema{
			{
				Name: "Push",
				Exercises: []ExerciseSchema{
					{Name: "Overhead Press", Sets: []SetSchema{
						{Weight: 40.0, Reps: 8},
						{Weight: 42.5, Reps: 6},
					}},
				},
			},
		},
	}

	blocks := buildReplacementBlocks(schema)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	block := blocks[0]
	if block.ID != 0 || block.UID == "" {
		t.Errorf("expected fresh block identity, got id=%d uid=%q", block.ID, block.UID)
	}
	if len(block.Exercises) != 1 {
		t.Fatalf("expected 1 exercise, got %d", len(block.Exercises))
	}
	exercise := block.Exercises[0]
	if exercise.UID == "" {
		t.Error("expected exercise uid assigned")
	}
	if len(exercise.Sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(exercise.Sets))
	}
	seen := map[string]bool{block.UID: true, exercise.UID: true}
	for i, set := range exercise.Sets {
		if set.UID == "" || seen[set.UID] {
			t.Errorf("set %d: expected unique uid, got %q", i, set.UID)
		}
		seen[set.UID] = true
		if set.Position != i {
			t.Errorf("set %d: expected position %d, got %d", i, i, set.Position)
		}
		if set.Status != SetStatusOpen {
			t.Errorf("set %d: expected open status, got %q", i, set.Status)
		}
	}
}

func TestBuildReplacementBlocksPrunesEmptyLeaves(t *testing.T) {
	schema := WorkoutSchema{
		Blocks: []BlockSchema{
			{
				Name: "Kept",
				Exercises: []ExerciseSchema{
					{Name: "Squat", Sets: []SetSchema{
						{Weight: 100.0, Reps: 5},
						{}, // all metrics absent, dropped
					}},
					{Name: "Ghost", Sets: []SetSchema{
						{}, // exercise left with no sets, dropped
					}},
				},
			},
			{
				Name: "Empty Block",
				Exercises: []ExerciseSchema{
					{Name: "Nothing", Sets: nil},
				},
			},
		},
	}

	blocks := buildReplacementBlocks(schema)

	if len(blocks) != 1 {
		t.Fatalf("expected empty block pruned, got %d blocks", len(blocks))
	}
	if len(blocks[0].Exercises) != 1 || blocks[0].Exercises[0].Name != "Squat" {
		t.Fatalf("expected only Squat to survive, got %+v", blocks[0].Exercises)
	}
	if len(blocks[0].Exercises[0].Sets) != 1 {
		t.Errorf("expected empty set pruned, got %d sets", len(blocks[0].Exercises[0].Sets))
	}
}

func TestBuildReplacementBlocksSkipsMalformedSets(t *testing.T) {
	schema := WorkoutSchema{
		Blocks: []BlockSchema{
			{
				Name: "Pull",
				Exercises: []ExerciseSchema{
					{Name: "Deadlift", Sets: []SetSchema{
						{Weight: "heavy", Reps: 5}, // not a number, skipped
						{Weight: 140.0, Reps: 5},
					}},
				},
			},
		},
	}

	blocks := buildReplacementBlocks(schema)

	if len(blocks) != 1 || len(blocks[0].Exercises) != 1 {
		t.Fatalf("expected Deadlift to survive, got %+v", blocks)
	}
	sets := blocks[0].Exercises[0].Sets
	if len(sets) != 1 {
		t.Fatalf("expected malformed set skipped, got %d sets", len(sets))
	}
	if sets[0].Weight == nil || *sets[0].Weight != 140 {
		t.Errorf("expected surviving set weight 140, got %v", sets[0].Weight)
	}
	if sets[0].Position != 0 {
		t.Errorf("expected position compacted to 0, got %d", sets[0].Position)
	}
}

func TestBuildReplacementBlocksHonorsExplicitPositions(t *testing.T) {
	schema := WorkoutSchema{
		Blocks: []BlockSchema{
			{Name: "Second", Position: intPtr(1), Exercises: []ExerciseSchema{
				{Name: "Curl", Sets: []SetSchema{{Weight: 15.0, Reps: 12}}},
			}},
			{Name: "First", Position: intPtr(0), Exercises: []ExerciseSchema{
				{Name: "Press", Sets: []SetSchema{{Weight: 40.0, Reps: 8}}},
			}},
		},
	}

	blocks := buildReplacementBlocks(schema)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Position != 1 || blocks[1].Position != 0 {
		t.Errorf("expected explicit positions 1 and 0, got %d and %d",
			blocks[0].Position, blocks[1].Position)
	}
}
