package model

import "time"

// RunParams are the inputs of one aggregation run
type RunParams struct {
	Venues    []string   `json:"venues"`     // Caller order is iteration order
	StartYear int        `json:"start_year"` // Inclusive
	EndYear   int        `json:"end_year"`   // Inclusive, not validated against StartYear
	Query     string     `json:"query"`
	Sort      SortPolicy `json:"sort"`
}

// Years expands the inclusive range in ascending order
func (p RunParams) Years() []int {
	var years []int
	for y := p.StartYear; y <= p.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// TotalPairs is |venues| x |years|
func (p RunParams) TotalPairs() int {
	return len(p.Venues) * len(p.Years())
}

// Snapshot is the display-ready projection of a run's state after one step
type Snapshot struct {
	FetchedStatus   string  `json:"fetched_status"`   // e.g. "Fetched 12 papers so far..."
	MatchedStatus   string  `json:"matched_status"`   // e.g. "Matched 3 papers so far..."
	FilteredDisplay string  `json:"filtered_display"` // Matching papers, formatted
	AuthorsDisplay  string  `json:"authors_display"`  // Top authors, formatted
	AllDisplay      string  `json:"all_display"`      // Every fetched paper, formatted
	ProgressPct     float64 `json:"progress_pct"`     // processed/total*100, 2 decimals

	FetchedCount int           `json:"fetched_count"`
	MatchedCount int           `json:"matched_count"`
	Processed    int           `json:"processed"`
	TotalPairs   int           `json:"total_pairs"`
	Papers       []Paper       `json:"-"`
	Filtered     []Paper       `json:"-"`
	TopAuthors   []AuthorCount `json:"-"`
	Warnings     []string      `json:"warnings,omitempty"`
	Error        string        `json:"error,omitempty"` // Set when the run could not start
	Final        bool          `json:"final"`           // Terminal snapshot of the run
}

// Report summarizes a finished run for JSON and Markdown output
type Report struct {
	RunID      string        `json:"run_id"`
	Params     RunParams     `json:"params"`
	Threshold  float64       `json:"threshold"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Pairs      int           `json:"pairs"`
	Papers     []Paper       `json:"papers"`
	Filtered   []Paper       `json:"filtered"`
	TopAuthors []AuthorCount `json:"top_authors"`
	Warnings   []string      `json:"warnings,omitempty"`
}
