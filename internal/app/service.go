package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"liftlog/api/internal/auth"
	"liftlog/api/internal/config"
	"liftlog/api/internal/genai"
	"liftlog/api/internal/revision"
	"liftlog/api/internal/search"
	"liftlog/api/internal/store"
)

type Session struct {
	UserID   string
	UserName string
}

type CreateWorkoutInput struct {
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Focus           string              `json:"focus"`
	Notes           string              `json:"notes"`
	DurationMinutes *int                `json:"duration_minutes"`
	PlanID          *int64              `json:"plan_id"`
	Blocks          []store.BlockSchema `json:"blocks"`
}

type GenerateRevisionInput struct {
	Instructions string `json:"instructions"`
}

// RevisionPreview is returned after a revision is generated and staged. The
// proposed schema is shown to the user; nothing is written to the workout
// until the revision is accepted.
type RevisionPreview struct {
	RevisionID string              `json:"revision_id"`
	WorkoutID  int64               `json:"workout_id"`
	Model      string              `json:"model"`
	Proposed   store.WorkoutSchema `json:"proposed"`
	CreatedAt  time.Time           `json:"created_at"`
}

type dataStore interface {
	CreateWorkout(context.Context, store.Workout) (*store.Workout, error)
	ListWorkouts(context.Context, string) ([]store.WorkoutSummary, error)
	GetWorkout(context.Context, string, int64) (*store.Workout, error)
	DeleteWorkout(context.Context, string, int64) error
	ReconcileBlock(context.Context, string, int64, int64, store.BlockPayload) (*store.Block, error)
	ReplaceWorkout(context.Context, string, int64, store.WorkoutSchema) (*store.Workout, error)
	Ping(context.Context) error
}

// RevisionStore holds staged revisions between generation and acceptance.
type RevisionStore interface {
	Stage(context.Context, revision.Pending) error
	Get(context.Context, string, int64, string) (revision.Pending, error)
	Discard(context.Context, string, int64, string) error
}

// Generator produces a revised workout schema from a prompt.
type Generator interface {
	ReviseWorkout(context.Context, genai.Request) (store.WorkoutSchema, error)
	Model() string
}

type searchIndex interface {
	Search(search.Query) search.Response
	IndexWorkout(search.Record)
	DeleteWorkout(string)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	revisions RevisionStore
	gen       Generator
	search    searchIndex
}

// NewService wires the application service. gen may be nil when no API key
// is configured; revision generation then returns 503.
func NewService(cfg config.Config, data dataStore, revisions RevisionStore, gen Generator, idx searchIndex) *Service {
	return &Service{
		cfg:       cfg,
		store:     data,
		revisions: revisions,
		gen:       gen,
		search:    idx,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.AuthSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: claims.Sub, UserName: claims.Name}, nil
}

func (s *Service) CreateWorkout(ctx context.Context, session Session, input CreateWorkoutInput) (*store.Workout, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}

	workout := store.Workout{
		OwnerID:     session.UserID,
		PlanID:      input.PlanID,
		Name:        name,
		Description: input.Description,
		Duration:    input.DurationMinutes,
		Focus:       input.Focus,
		Notes:       input.Notes,
		Blocks:      store.BlocksFromSchema(store.WorkoutSchema{Blocks: input.Blocks}),
	}

	created, err := s.store.CreateWorkout(ctx, workout)
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	s.search.IndexWorkout(workoutRecord(created))
	return created, nil
}

func (s *Service) ListWorkouts(ctx context.Context, session Session) ([]store.WorkoutSummary, error) {
	summaries, err := s.store.ListWorkouts(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return summaries, nil
}

func (s *Service) GetWorkout(ctx context.Context, session Session, workoutID int64) (*store.Workout, error) {
	workout, err := s.store.GetWorkout(ctx, session.UserID, workoutID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return workout, nil
}

func (s *Service) DeleteWorkout(ctx context.Context, session Session, workoutID int64) error {
	if err := s.store.DeleteWorkout(ctx, session.UserID, workoutID); err != nil {
		return mapStoreError(err)
	}
	s.search.DeleteWorkout(strconv.FormatInt(workoutID, 10))
	return nil
}

// SaveBlock reconciles one block subtree against the incoming payload.
func (s *Service) SaveBlock(ctx context.Context, session Session, workoutID, blockID int64, payload store.BlockPayload) (*store.Block, error) {
	if strings.TrimSpace(payload.Name) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "block name is required", nil)
	}
	block, err := s.store.ReconcileBlock(ctx, session.UserID, workoutID, blockID, payload)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return block, nil
}

// GenerateRevision asks the model for a revised workout and stages the
// result. The stored workout is untouched until the revision is accepted.
func (s *Service) GenerateRevision(ctx context.Context, session Session, workoutID int64, input GenerateRevisionInput) (*RevisionPreview, error) {
	if s.gen == nil {
		return nil, domainError(http.StatusServiceUnavailable, "GENERATION_UNAVAILABLE", "Workout generation is not configured", nil)
	}
	instructions := strings.TrimSpace(input.Instructions)
	if instructions == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "instructions are required", nil)
	}

	workout, err := s.store.GetWorkout(ctx, session.UserID, workoutID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	schema, err := s.gen.ReviseWorkout(genCtx, genai.Request{
		Workout:      workout,
		Instructions: instructions,
	})
	if err != nil {
		log.Printf("genai: revise workout %d: %v", workoutID, err)
		return nil, domainError(http.StatusBadGateway, "GENERATION_FAILED", "Workout generation failed", nil)
	}

	pending := revision.Pending{
		ID:        uuid.NewString(),
		OwnerID:   session.UserID,
		WorkoutID: workoutID,
		Model:     s.gen.Model(),
		Schema:    schema,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.revisions.Stage(ctx, pending); err != nil {
		return nil, fmt.Errorf("stage revision: %w", err)
	}

	return &RevisionPreview{
		RevisionID: pending.ID,
		WorkoutID:  workoutID,
		Model:      pending.Model,
		Proposed:   schema,
		CreatedAt:  pending.CreatedAt,
	}, nil
}

// AcceptRevision swaps the staged schema in as the workout's new tree. The
// previous tree is kept as a snapshot on the workout row.
func (s *Service) AcceptRevision(ctx context.Context, session Session, workoutID int64, revisionID string) (*store.Workout, error) {
	pending, err := s.revisions.Get(ctx, session.UserID, workoutID, revisionID)
	if err != nil {
		if errors.Is(err, revision.ErrNotFound) {
			return nil, domainError(http.StatusNotFound, "REVISION_NOT_FOUND", "Revision not found or expired", nil)
		}
		return nil, fmt.Errorf("load revision: %w", err)
	}

	workout, err := s.store.ReplaceWorkout(ctx, session.UserID, workoutID, pending.Schema)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if err := s.revisions.Discard(ctx, session.UserID, workoutID, revisionID); err != nil {
		log.Printf("revision: discard %s after accept: %v", revisionID, err)
	}
	s.search.IndexWorkout(workoutRecord(workout))
	return workout, nil
}

// DiscardRevision drops a staged revision without touching the workout.
func (s *Service) DiscardRevision(ctx context.Context, session Session, workoutID int64, revisionID string) error {
	if err := s.revisions.Discard(ctx, session.UserID, workoutID, revisionID); err != nil {
		return fmt.Errorf("discard revision: %w", err)
	}
	return nil
}

func (s *Service) Search(session Session, text string, limit, offset int) search.Response {
	return s.search.Search(search.Query{
		OwnerID: session.UserID,
		Text:    text,
		Limit:   limit,
		Offset:  offset,
	})
}

func workoutRecord(w *store.Workout) search.Record {
	return search.Record{
		ID:          strconv.FormatInt(w.ID, 10),
		OwnerID:     w.OwnerID,
		Name:        w.Name,
		Focus:       w.Focus,
		Description: w.Description,
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainError(http.StatusNotFound, "NOT_FOUND", "Workout not found", nil)
	}
	return err
}
