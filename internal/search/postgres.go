package search

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres implements Searcher directly against the workouts table, used as
// the fallback when Meilisearch is unavailable.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Healthy always returns true: if Postgres is down, the whole app is down.
func (p *Postgres) Healthy() bool {
	return true
}

func (p *Postgres) Search(q Query) ([]Result, int, error) {
	if q.Text == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	ctx := context.Background()
	pattern := "%" + q.Text + "%"

	const where = `
		owner_id = $1
		AND (name ILIKE $2 OR focus ILIKE $2 OR description ILIKE $2)
	`

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts WHERE `+where, q.OwnerID, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("search count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id::text, name, focus, description
		FROM workouts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d
	`, where, limit, offset), q.OwnerID, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Name, &r.Focus, &r.Snippet); err != nil {
			return nil, 0, fmt.Errorf("search scan: %w", err)
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// LoadAllRecords returns every workout record for full reindexing.
func (p *Postgres) LoadAllRecords(ctx context.Context) ([]Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, owner_id, name, focus, description
		FROM workouts
	`)
	if err != nil {
		return nil, fmt.Errorf("load workout records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &rec.Focus, &rec.Description); err != nil {
			return nil, fmt.Errorf("scan workout record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout records: %w", err)
	}
	return records, nil
}
