package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"liftlog/api/internal/config"
	"liftlog/api/internal/genai"
	"liftlog/api/internal/revision"
	"liftlog/api/internal/search"
	"liftlog/api/internal/store"
)

type fakeStore struct {
	createWorkoutFn  func(context.Context, store.Workout) (*store.Workout, error)
	listWorkoutsFn   func(context.Context, string) ([]store.WorkoutSummary, error)
	getWorkoutFn     func(context.Context, string, int64) (*store.Workout, error)
	deleteWorkoutFn  func(context.Context, string, int64) error
	reconcileBlockFn func(context.Context, string, int64, int64, store.BlockPayload) (*store.Block, error)
	replaceWorkoutFn func(context.Context, string, int64, store.WorkoutSchema) (*store.Workout, error)
	pingFn           func(context.Context) error
}

func (f *fakeStore) CreateWorkout(ctx context.Context, w store.Workout) (*store.Workout, error) {
	if f.createWorkoutFn != nil {
		return f.createWorkoutFn(ctx, w)
	}
	created := w
	created.ID = 1
	return &created, nil
}

func (f *fakeStore) ListWorkouts(ctx context.Context, ownerID string) ([]store.WorkoutSummary, error) {
	if f.listWorkoutsFn != nil {
		return f.listWorkoutsFn(ctx, ownerID)
	}
	return nil, nil
}

func (f *fakeStore) GetWorkout(ctx context.Context, ownerID string, workoutID int64) (*store.Workout, error) {
	if f.getWorkoutFn != nil {
		return f.getWorkoutFn(ctx, ownerID, workoutID)
	}
	return &store.Workout{ID: workoutID, OwnerID: ownerID, Name: "Fake"}, nil
}

func (f *fakeStore) DeleteWorkout(ctx context.Context, ownerID string, workoutID int64) error {
	if f.deleteWorkoutFn != nil {
		return f.deleteWorkoutFn(ctx, ownerID, workoutID)
	}
	return nil
}

func (f *fakeStore) ReconcileBlock(ctx context.Context, ownerID string, workoutID, blockID int64, payload store.BlockPayload) (*store.Block, error) {
	if f.reconcileBlockFn != nil {
		return f.reconcileBlockFn(ctx, ownerID, workoutID, blockID, payload)
	}
	return &store.Block{ID: blockID, Name: payload.Name}, nil
}

func (f *fakeStore) ReplaceWorkout(ctx context.Context, ownerID string, workoutID int64, schema store.WorkoutSchema) (*store.Workout, error) {
	if f.replaceWorkoutFn != nil {
		return f.replaceWorkoutFn(ctx, ownerID, workoutID, schema)
	}
	return &store.Workout{ID: workoutID, OwnerID: ownerID, Name: schema.Name}, nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

type fakeRevisions struct {
	stageFn   func(context.Context, revision.Pending) error
	getFn     func(context.Context, string, int64, string) (revision.Pending, error)
	discardFn func(context.Context, string, int64, string) error
}

func (f *fakeRevisions) Stage(ctx context.Context, pending revision.Pending) error {
	if f.stageFn != nil {
		return f.stageFn(ctx, pending)
	}
	return nil
}

func (f *fakeRevisions) Get(ctx context.Context, ownerID string, workoutID int64, revisionID string) (revision.Pending, error) {
	if f.getFn != nil {
		return f.getFn(ctx, ownerID, workoutID, revisionID)
	}
	return revision.Pending{}, revision.ErrNotFound
}

func (f *fakeRevisions) Discard(ctx context.Context, ownerID string, workoutID int64, revisionID string) error {
	if f.discardFn != nil {
		return f.discardFn(ctx, ownerID, workoutID, revisionID)
	}
	return nil
}

type fakeGen struct {
	reviseFn func(context.Context, genai.Request) (store.WorkoutSchema, error)
}

func (f *fakeGen) ReviseWorkout(ctx context.Context, req genai.Request) (store.WorkoutSchema, error) {
	if f.reviseFn != nil {
		return f.reviseFn(ctx, req)
	}
	return store.WorkoutSchema{}, errors.New("not configured")
}

func (f *fakeGen) Model() string { return "fake-model" }

type fakeSearch struct {
	searchFn func(search.Query) search.Response
	indexed  []search.Record
	deleted  []string
}

func (f *fakeSearch) Search(q search.Query) search.Response {
	if f.searchFn != nil {
		return f.searchFn(q)
	}
	return search.Response{Results: []search.Result{}, Query: q.Text}
}

func (f *fakeSearch) IndexWorkout(rec search.Record) { f.indexed = append(f.indexed, rec) }
func (f *fakeSearch) DeleteWorkout(id string)        { f.deleted = append(f.deleted, id) }

func testConfig() config.Config {
	return config.Config{
		AuthSecret:      "test-secret",
		RevisionTTL:     time.Hour,
		GenerateTimeout: time.Second,
	}
}

func newTestService(fs *fakeStore, fr *fakeRevisions, fg Generator, fx *fakeSearch) *Service {
	return &Service{
		cfg:       testConfig(),
		store:     fs,
		revisions: fr,
		gen:       fg,
		search:    fx,
	}
}

var testSession = Session{UserID: "user-1", UserName: "Alex"}

func TestCreateWorkoutRequiresName(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, nil, &fakeSearch{})

	_, err := svc.CreateWorkout(context.Background(), testSession, CreateWorkoutInput{Name: "  "})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateWorkoutBuildsTreeAndIndexes(t *testing.T) {
	var saved store.Workout
	fs := &fakeStore{
		createWorkoutFn: func(_ context.Context, w store.Workout) (*store.Workout, error) {
			saved = w
			created := w
			created.ID = 7
			return &created, nil
		},
	}
	fx := &fakeSearch{}
	svc := newTestService(fs, &fakeRevisions{}, nil, fx)

	workout, err := svc.CreateWorkout(context.Background(), testSession, CreateWorkoutInput{
		Name:  "Leg Day",
		Focus: "strength",
		Blocks: []store.BlockSchema{
			{Name: "Main", Exercises: []store.ExerciseSchema{
				{Name: "Squat", Sets: []store.SetSchema{{Weight: 100.0, Reps: 5}}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("CreateWorkout failed: %v", err)
	}

	if saved.OwnerID != "user-1" {
		t.Errorf("expected owner from session, got %q", saved.OwnerID)
	}
	if len(saved.Blocks) != 1 || saved.Blocks[0].UID == "" {
		t.Fatalf("expected block tree with uids, got %+v", saved.Blocks)
	}
	if workout.ID != 7 {
		t.Errorf("expected created workout returned, got %+v", workout)
	}
	if len(fx.indexed) != 1 || fx.indexed[0].ID != "7" || fx.indexed[0].OwnerID != "user-1" {
		t.Errorf("expected workout indexed, got %+v", fx.indexed)
	}
}

func TestGetWorkoutMapsNotFound(t *testing.T) {
	fs := &fakeStore{
		getWorkoutFn: func(context.Context, string, int64) (*store.Workout, error) {
			return nil, store.ErrNotFound
		},
	}
	svc := newTestService(fs, &fakeRevisions{}, nil, &fakeSearch{})

	_, err := svc.GetWorkout(context.Background(), testSession, 99)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteWorkoutRemovesFromIndex(t *testing.T) {
	fx := &fakeSearch{}
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, nil, fx)

	if err := svc.DeleteWorkout(context.Background(), testSession, 5); err != nil {
		t.Fatalf("DeleteWorkout failed: %v", err)
	}
	if len(fx.deleted) != 1 || fx.deleted[0] != "5" {
		t.Errorf("expected workout 5 removed from index, got %v", fx.deleted)
	}
}

func TestSaveBlockRequiresName(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, nil, &fakeSearch{})

	_, err := svc.SaveBlock(context.Background(), testSession, 1, 2, store.BlockPayload{})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSaveBlockPassesOwnerScope(t *testing.T) {
	var gotOwner string
	var gotWorkout, gotBlock int64
	fs := &fakeStore{
		reconcileBlockFn: func(_ context.Context, ownerID string, workoutID, blockID int64, payload store.BlockPayload) (*store.Block, error) {
			gotOwner, gotWorkout, gotBlock = ownerID, workoutID, blockID
			return &store.Block{ID: blockID, Name: payload.Name}, nil
		},
	}
	svc := newTestService(fs, &fakeRevisions{}, nil, &fakeSearch{})

	block, err := svc.SaveBlock(context.Background(), testSession, 3, 4, store.BlockPayload{Name: "Main"})
	if err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}
	if gotOwner != "user-1" || gotWorkout != 3 || gotBlock != 4 {
		t.Errorf("unexpected scope: %s/%d/%d", gotOwner, gotWorkout, gotBlock)
	}
	if block.Name != "Main" {
		t.Errorf("unexpected block: %+v", block)
	}
}

func TestGenerateRevisionWithoutGenerator(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, nil, &fakeSearch{})

	_, err := svc.GenerateRevision(context.Background(), testSession, 1, GenerateRevisionInput{Instructions: "harder"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "GENERATION_UNAVAILABLE" {
		t.Errorf("expected GENERATION_UNAVAILABLE, got %v", err)
	}
}

func TestGenerateRevisionRequiresInstructions(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, &fakeGen{}, &fakeSearch{})

	_, err := svc.GenerateRevision(context.Background(), testSession, 1, GenerateRevisionInput{Instructions: " "})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGenerateRevisionStagesResult(t *testing.T) {
	var staged revision.Pending
	fr := &fakeRevisions{
		stageFn: func(_ context.Context, pending revision.Pending) error {
			staged = pending
			return nil
		},
	}
	fg := &fakeGen{
		reviseFn: func(_ context.Context, req genai.Request) (store.WorkoutSchema, error) {
			if req.Workout == nil || req.Instructions != "more volume" {
				t.Errorf("unexpected request: %+v", req)
			}
			return store.WorkoutSchema{
				Name:   "Revised",
				Blocks: []store.BlockSchema{{Name: "Main"}},
			}, nil
		},
	}
	svc := newTestService(&fakeStore{}, fr, fg, &fakeSearch{})

	preview, err := svc.GenerateRevision(context.Background(), testSession, 8, GenerateRevisionInput{Instructions: "more volume"})
	if err != nil {
		t.Fatalf("GenerateRevision failed: %v", err)
	}

	if preview.RevisionID == "" || preview.RevisionID != staged.ID {
		t.Errorf("expected staged revision id in preview, got %q vs %q", preview.RevisionID, staged.ID)
	}
	if staged.OwnerID != "user-1" || staged.WorkoutID != 8 {
		t.Errorf("unexpected staging scope: %+v", staged)
	}
	if preview.Model != "fake-model" || preview.Proposed.Name != "Revised" {
		t.Errorf("unexpected preview: %+v", preview)
	}
}

func TestGenerateRevisionMapsGeneratorFailure(t *testing.T) {
	fg := &fakeGen{
		reviseFn: func(context.Context, genai.Request) (store.WorkoutSchema, error) {
			return store.WorkoutSchema{}, errors.New("model unavailable")
		},
	}
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, fg, &fakeSearch{})

	_, err := svc.GenerateRevision(context.Background(), testSession, 1, GenerateRevisionInput{Instructions: "x"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "GENERATION_FAILED" {
		t.Errorf("expected GENERATION_FAILED, got %v", err)
	}
}

func TestAcceptRevisionUnknown(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, nil, &fakeSearch{})

	_, err := svc.AcceptRevision(context.Background(), testSession, 1, "missing")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "REVISION_NOT_FOUND" {
		t.Errorf("expected REVISION_NOT_FOUND, got %v", err)
	}
}

func TestAcceptRevisionReplacesAndDiscards(t *testing.T) {
	schema := store.WorkoutSchema{
		Name:   "Revised Day",
		Blocks: []store.BlockSchema{{Name: "Main"}},
	}
	discarded := false
	fr := &fakeRevisions{
		getFn: func(_ context.Context, ownerID string, workoutID int64, revisionID string) (revision.Pending, error) {
			if ownerID != "user-1" || workoutID != 9 || revisionID != "rev-9" {
				t.Errorf("unexpected lookup: %s/%d/%s", ownerID, workoutID, revisionID)
			}
			return revision.Pending{ID: revisionID, OwnerID: ownerID, WorkoutID: workoutID, Schema: schema}, nil
		},
		discardFn: func(context.Context, string, int64, string) error {
			discarded = true
			return nil
		},
	}
	var replacedWith store.WorkoutSchema
	fs := &fakeStore{
		replaceWorkoutFn: func(_ context.Context, ownerID string, workoutID int64, s store.WorkoutSchema) (*store.Workout, error) {
			replacedWith = s
			return &store.Workout{ID: workoutID, OwnerID: ownerID, Name: s.Name}, nil
		},
	}
	fx := &fakeSearch{}
	svc := newTestService(fs, fr, nil, fx)

	workout, err := svc.AcceptRevision(context.Background(), testSession, 9, "rev-9")
	if err != nil {
		t.Fatalf("AcceptRevision failed: %v", err)
	}
	if replacedWith.Name != "Revised Day" {
		t.Errorf("expected staged schema applied, got %+v", replacedWith)
	}
	if !discarded {
		t.Error("expected revision discarded after accept")
	}
	if workout.Name != "Revised Day" {
		t.Errorf("unexpected workout: %+v", workout)
	}
	if len(fx.indexed) != 1 {
		t.Errorf("expected accepted workout reindexed, got %+v", fx.indexed)
	}
}

func TestSearchScopesToSessionOwner(t *testing.T) {
	var gotQuery search.Query
	fx := &fakeSearch{
		searchFn: func(q search.Query) search.Response {
			gotQuery = q
			return search.Response{Results: []search.Result{}, Query: q.Text}
		},
	}
	svc := newTestService(&fakeStore{}, &fakeRevisions{}, nil, fx)

	svc.Search(testSession, "squat", 10, 5)
	if gotQuery.OwnerID != "user-1" || gotQuery.Text != "squat" || gotQuery.Limit != 10 || gotQuery.Offset != 5 {
		t.Errorf("unexpected query: %+v", gotQuery)
	}
}
