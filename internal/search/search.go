package search

// Record is the data we index for a workout.
type Record struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Focus       string `json:"focus"`
	Description string `json:"description"`
}

// Query describes a search request. OwnerID is mandatory: results never
// cross owners.
type Query struct {
	OwnerID string
	Text    string
	Limit   int
	Offset  int
}

// Result is a single hit returned to the caller.
type Result struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Focus   string `json:"focus"`
	Snippet string `json:"snippet"`
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a workout search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}
