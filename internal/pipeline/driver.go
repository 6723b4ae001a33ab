package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/ppiankov/paperscout/internal/model"
)

// NoVenuesStatus is reported when a run has nothing to fetch
const NoVenuesStatus = "No valid conferences selected."

// PairFetcher produces the contribution of one (venue, year) pair
type PairFetcher interface {
	Fetch(ctx context.Context, venue string, year int, reference []float32) (PairResult, error)
}

// Referencer computes the run's reference embedding from the query
type Referencer interface {
	Reference(ctx context.Context, query string) ([]float32, error)
}

// RunState is the accumulator of one run. It is owned by a single run and
// advanced one pair at a time by Step.
type RunState struct {
	Sort      model.SortPolicy
	All       []model.Paper
	Filtered  []model.Paper
	Tally     *model.AuthorTally
	Processed int
	Total     int
	Warnings  []string
}

// NewRunState creates the empty state a run starts from
func NewRunState(params model.RunParams) *RunState {
	return &RunState{
		Sort:  params.Sort,
		Tally: model.NewAuthorTally(),
		Total: params.TotalPairs(),
	}
}

// Step folds one pair's result into the state: append, merge, re-sort and
// count the pair as processed. A failed pair still counts toward progress.
func (s *RunState) Step(res PairResult, pairErr error) {
	s.All = append(s.All, res.All...)
	s.Filtered = append(s.Filtered, res.Filtered...)
	s.Tally.Merge(res.Tally)
	if pairErr != nil {
		s.Warnings = append(s.Warnings, pairErr.Error())
	}
	s.Sort.Sort(s.All)
	s.Sort.Sort(s.Filtered)
	s.Processed++
}

// Progress is processed/total as a percentage rounded to 2 decimals
func (s *RunState) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return round2(float64(s.Processed) * 100 / float64(s.Total))
}

// Snapshot projects the state into display form. The returned snapshot
// shares nothing with the state.
func (s *RunState) Snapshot(topAuthors int, final bool) model.Snapshot {
	top := s.Tally.Top(topAuthors)
	snap := model.Snapshot{
		FetchedStatus:   fmt.Sprintf("Fetched %d papers so far...", len(s.All)),
		MatchedStatus:   fmt.Sprintf("Matched %d papers so far...", len(s.Filtered)),
		FilteredDisplay: model.FormatPapers(s.Filtered),
		AuthorsDisplay:  model.FormatAuthors(top),
		AllDisplay:      model.FormatPapers(s.All),
		ProgressPct:     s.Progress(),
		FetchedCount:    len(s.All),
		MatchedCount:    len(s.Filtered),
		Processed:       s.Processed,
		TotalPairs:      s.Total,
		Papers:          clonePapers(s.All),
		Filtered:        clonePapers(s.Filtered),
		TopAuthors:      top,
		Warnings:        slices.Clone(s.Warnings),
		Final:           final,
	}
	if final {
		snap.FetchedStatus = fmt.Sprintf("Total papers retrieved: %d", len(s.All))
		snap.MatchedStatus = fmt.Sprintf("Total matching papers: %d", len(s.Filtered))
	}
	return snap
}

// clonePapers copies papers including their author lists
func clonePapers(papers []model.Paper) []model.Paper {
	out := slices.Clone(papers)
	for i := range out {
		out[i].Authors = slices.Clone(out[i].Authors)
	}
	return out
}

// Driver walks the venue x year cross product and streams snapshots
type Driver struct {
	pairs      PairFetcher
	referencer Referencer
	topAuthors int
	log        io.Writer
}

// NewDriver creates a driver. topAuthors bounds the author leaderboard.
func NewDriver(pairs PairFetcher, referencer Referencer, topAuthors int, log io.Writer) *Driver {
	if log == nil {
		log = io.Discard
	}
	return &Driver{pairs: pairs, referencer: referencer, topAuthors: topAuthors, log: log}
}

// Run returns a lazy sequence with one snapshot per processed pair followed by
// a final snapshot. Nothing happens until the sequence is ranged over, and it
// can be consumed only once; later ranges yield nothing. Stopping early
// abandons the run.
func (d *Driver) Run(ctx context.Context, params model.RunParams) iter.Seq[model.Snapshot] {
	var consumed atomic.Bool

	return func(yield func(model.Snapshot) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}

		if len(params.Venues) == 0 {
			yield(model.Snapshot{FetchedStatus: NoVenuesStatus, Final: true})
			return
		}

		state := NewRunState(params)

		reference, err := d.referencer.Reference(ctx, params.Query)
		if err != nil {
			_, _ = fmt.Fprintf(d.log, "warning: %v\n", err)
			state.Warnings = append(state.Warnings, err.Error())
			snap := state.Snapshot(d.topAuthors, true)
			snap.FetchedStatus = "Error: " + err.Error()
			snap.MatchedStatus = ""
			snap.Error = err.Error()
			yield(snap)
			return
		}

		years := params.Years()
		for _, venue := range params.Venues {
			for _, year := range years {
				if err := ctx.Err(); err != nil {
					state.Warnings = append(state.Warnings, fmt.Sprintf("run stopped: %v", err))
					yield(state.Snapshot(d.topAuthors, true))
					return
				}

				res, err := d.pairs.Fetch(ctx, venue, year, reference)
				if err != nil {
					_, _ = fmt.Fprintf(d.log, "warning: %v\n", err)
				}
				state.Step(res, err)

				if !yield(state.Snapshot(d.topAuthors, false)) {
					return
				}
			}
		}

		state.Sort.Sort(state.All)
		state.Sort.Sort(state.Filtered)
		yield(state.Snapshot(d.topAuthors, true))
	}
}
