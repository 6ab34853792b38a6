package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to a
// direct Postgres query.
type Service struct {
	meili *Meili
	pg    *Postgres
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, pg *Postgres) *Service {
	return &Service{meili: meili, pg: pg}
}

// Search tries Meilisearch if healthy, otherwise falls back to Postgres.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to postgres: %v", err)
	}

	results, total, err := s.pg.Search(q)
	if err != nil {
		log.Printf("search: postgres error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexWorkout indexes a workout (fire-and-forget to Meilisearch).
func (s *Service) IndexWorkout(rec Record) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexWorkout(rec); err != nil {
			log.Printf("search: index workout %s: %v", rec.ID, err)
		}
	}()
}

// DeleteWorkout removes a workout from the index (fire-and-forget).
func (s *Service) DeleteWorkout(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteWorkout(id); err != nil {
			log.Printf("search: delete workout %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes every stored workout into Meilisearch, called during
// startup when Meilisearch is healthy.
func (s *Service) ReindexAll(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	records, err := s.pg.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load: %v", err)
		return
	}
	if err := s.meili.IndexWorkouts(records); err != nil {
		log.Printf("search: reindex workouts: %v", err)
	}
}

func nonNil(results []Result) []Result {
	if results == nil {
		return []Result{}
	}
	return results
}
