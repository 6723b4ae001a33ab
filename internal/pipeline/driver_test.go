package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/ppiankov/paperscout/internal/model"
)

// scriptedPairs returns canned results keyed by "venue/year"
type scriptedPairs struct {
	results map[string]PairResult
	fail    map[string]bool
	calls   []string
}

func (s *scriptedPairs) Fetch(ctx context.Context, venue string, year int, reference []float32) (PairResult, error) {
	key := fmt.Sprintf("%s/%d", venue, year)
	s.calls = append(s.calls, key)
	if s.fail[key] {
		return emptyPair(), &model.PairError{Kind: model.KindTransport, Venue: venue, Year: year, Err: errors.New("unexpected status: 500")}
	}
	res, ok := s.results[key]
	if !ok {
		return emptyPair(), nil
	}
	return res, nil
}

type staticReference struct {
	err error
}

func (r staticReference) Reference(ctx context.Context, query string) ([]float32, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []float32{1, 0}, nil
}

func paper(title string, year int, score float64, authors ...string) model.Paper {
	return model.Paper{Title: title, Year: year, Score: score, Authors: authors}
}

func pairOf(threshold float64, papers ...model.Paper) PairResult {
	res := emptyPair()
	for _, p := range papers {
		res.All = append(res.All, p)
		if p.Score > threshold {
			res.Filtered = append(res.Filtered, p)
			res.Tally.AddAuthors(p.Authors)
		}
	}
	return res
}

func collect(seq func(func(model.Snapshot) bool)) []model.Snapshot {
	var out []model.Snapshot
	for snap := range seq {
		out = append(out, snap)
	}
	return out
}

func TestDriver_EmptyVenues(t *testing.T) {
	pairs := &scriptedPairs{}
	d := NewDriver(pairs, staticReference{}, 20, nil)

	snaps := collect(d.Run(context.Background(), model.RunParams{StartYear: 2020, EndYear: 2021}))
	if len(snaps) != 1 {
		t.Fatalf("expected a single snapshot, got %d", len(snaps))
	}
	if snaps[0].FetchedStatus != NoVenuesStatus || snaps[0].ProgressPct != 0 || !snaps[0].Final {
		t.Errorf("unexpected snapshot: %+v", snaps[0])
	}
	if len(pairs.calls) != 0 {
		t.Errorf("expected no fetches, got %v", pairs.calls)
	}
}

func TestDriver_IterationOrderAndProgress(t *testing.T) {
	pairs := &scriptedPairs{results: map[string]PairResult{
		"SOSP/2020": pairOf(0.4, paper("a", 2020, 0.9, "Ada")),
		"OSDI/2021": pairOf(0.4, paper("b", 2021, 0.5, "Ada", "Bob"), paper("c", 2021, 0)),
	}}
	d := NewDriver(pairs, staticReference{}, 20, nil)

	params := model.RunParams{Venues: []string{"SOSP", "OSDI"}, StartYear: 2020, EndYear: 2022, Sort: model.SortRelevance}
	snaps := collect(d.Run(context.Background(), params))

	wantCalls := []string{"SOSP/2020", "SOSP/2021", "SOSP/2022", "OSDI/2020", "OSDI/2021", "OSDI/2022"}
	if !slices.Equal(pairs.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", pairs.calls, wantCalls)
	}

	if len(snaps) != 7 {
		t.Fatalf("expected 6 step snapshots and a final one, got %d", len(snaps))
	}

	prev := -1.0
	for i, s := range snaps {
		if s.ProgressPct < prev {
			t.Errorf("progress decreased at %d: %v < %v", i, s.ProgressPct, prev)
		}
		prev = s.ProgressPct
		if s.Final != (i == len(snaps)-1) {
			t.Errorf("snapshot %d Final = %v", i, s.Final)
		}
	}
	if snaps[0].ProgressPct != 16.67 {
		t.Errorf("expected first progress 16.67, got %v", snaps[0].ProgressPct)
	}

	final := snaps[len(snaps)-1]
	if final.ProgressPct != 100 {
		t.Errorf("expected final progress 100, got %v", final.ProgressPct)
	}
	if final.FetchedStatus != "Total papers retrieved: 3" || final.MatchedStatus != "Total matching papers: 2" {
		t.Errorf("unexpected final status: %q / %q", final.FetchedStatus, final.MatchedStatus)
	}
	if snaps[4].FetchedStatus != "Fetched 3 papers so far..." || snaps[4].MatchedStatus != "Matched 2 papers so far..." {
		t.Errorf("unexpected step status: %q / %q", snaps[4].FetchedStatus, snaps[4].MatchedStatus)
	}
	if final.AuthorsDisplay != "Ada: 2 papers\nBob: 1 papers" {
		t.Errorf("unexpected authors display: %q", final.AuthorsDisplay)
	}
	if !strings.HasPrefix(final.AllDisplay, "2020 | Score: 0.90\nTitle: a") {
		t.Errorf("unexpected all display: %q", final.AllDisplay)
	}
}

func TestDriver_Invariants(t *testing.T) {
	pairs := &scriptedPairs{results: map[string]PairResult{
		"A/2020": pairOf(0.4, paper("p1", 2020, 0.7, "X", "Y"), paper("p2", 2020, 0)),
		"A/2021": pairOf(0.4, paper("p3", 2021, 0.45, "Y", "Y"), paper("p4", 2021, 0.95, "Z")),
		"B/2020": pairOf(0.4, paper("p5", 2020, 0, "X")),
		"B/2021": pairOf(0.4, paper("p6", 2021, 0.6, "X")),
	}}
	d := NewDriver(pairs, staticReference{}, 0, nil)
	params := model.RunParams{Venues: []string{"A", "B"}, StartYear: 2020, EndYear: 2021, Sort: model.SortMostRecentFirst}

	for _, snap := range collect(d.Run(context.Background(), params)) {
		titles := make(map[string]bool)
		for _, p := range snap.Papers {
			titles[p.Title] = true
		}

		want := make(map[string]int)
		for _, p := range snap.Filtered {
			if !titles[p.Title] {
				t.Errorf("filtered paper %q missing from all papers", p.Title)
			}
			if p.Score <= 0.4 {
				t.Errorf("filtered paper %q has score %v", p.Title, p.Score)
			}
			for _, a := range p.Authors {
				want[a]++
			}
		}

		got := make(map[string]int)
		for _, row := range snap.TopAuthors {
			got[row.Author] = row.Count
		}
		for a, n := range want {
			if got[a] != n {
				t.Errorf("tally[%s] = %d, want %d", a, got[a], n)
			}
		}
		if len(got) != len(want) {
			t.Errorf("tally has %d authors, want %d", len(got), len(want))
		}

		for i := 1; i < len(snap.Papers); i++ {
			if snap.Papers[i-1].Year < snap.Papers[i].Year {
				t.Errorf("papers not sorted most recent first: %v", snap.Papers)
			}
		}
	}
}

func TestDriver_PairFailureContinues(t *testing.T) {
	pairs := &scriptedPairs{
		results: map[string]PairResult{"A/2021": pairOf(0.4, paper("ok", 2021, 0.8, "X"))},
		fail:    map[string]bool{"A/2020": true},
	}
	var log strings.Builder
	d := NewDriver(pairs, staticReference{}, 20, &log)

	snaps := collect(d.Run(context.Background(), model.RunParams{Venues: []string{"A"}, StartYear: 2020, EndYear: 2021}))
	final := snaps[len(snaps)-1]

	if final.FetchedCount != 1 || final.MatchedCount != 1 || final.ProgressPct != 100 {
		t.Errorf("expected run to continue after failure, got %+v", final)
	}
	if len(final.Warnings) != 1 || !strings.Contains(final.Warnings[0], "A 2020") {
		t.Errorf("expected one pair warning, got %v", final.Warnings)
	}
	if !strings.Contains(log.String(), "warning: A 2020") {
		t.Errorf("expected warning logged, got %q", log.String())
	}
}

func TestDriver_ReferenceFailure(t *testing.T) {
	pairs := &scriptedPairs{}
	d := NewDriver(pairs, staticReference{err: model.ErrNoReference}, 20, nil)

	snaps := collect(d.Run(context.Background(), model.RunParams{Venues: []string{"A"}, StartYear: 2020, EndYear: 2020}))
	if len(snaps) != 1 || !snaps[0].Final || snaps[0].Error == "" {
		t.Fatalf("expected one terminal error snapshot, got %+v", snaps)
	}
	if !strings.HasPrefix(snaps[0].FetchedStatus, "Error: ") {
		t.Errorf("unexpected status %q", snaps[0].FetchedStatus)
	}
	if len(pairs.calls) != 0 {
		t.Errorf("expected no fetches, got %v", pairs.calls)
	}
}

func TestDriver_LazyAndSinglePass(t *testing.T) {
	pairs := &scriptedPairs{}
	d := NewDriver(pairs, staticReference{}, 20, nil)

	seq := d.Run(context.Background(), model.RunParams{Venues: []string{"A", "B"}, StartYear: 2020, EndYear: 2020})
	if len(pairs.calls) != 0 {
		t.Fatalf("expected no work before iteration, got %v", pairs.calls)
	}

	for range seq {
		break
	}
	if len(pairs.calls) != 1 {
		t.Errorf("expected abandonment after the first pair, got %v", pairs.calls)
	}

	if again := collect(seq); len(again) != 0 {
		t.Errorf("expected a consumed sequence to yield nothing, got %d snapshots", len(again))
	}
}

func TestDriver_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pairs := &scriptedPairs{}
	d := NewDriver(pairs, staticReference{}, 20, nil)

	var snaps []model.Snapshot
	for snap := range d.Run(ctx, model.RunParams{Venues: []string{"A", "B", "C"}, StartYear: 2020, EndYear: 2020}) {
		snaps = append(snaps, snap)
		cancel()
	}

	final := snaps[len(snaps)-1]
	if !final.Final || final.Processed != 1 {
		t.Errorf("expected run to stop after cancellation, got %+v", final)
	}
	if len(final.Warnings) == 0 || !strings.Contains(final.Warnings[0], "canceled") {
		t.Errorf("expected cancellation warning, got %v", final.Warnings)
	}
}

func TestRunState_SortIdempotent(t *testing.T) {
	for _, policy := range []model.SortPolicy{model.SortRelevance, model.SortMostRecentFirst, model.SortOldestFirst} {
		t.Run(string(policy), func(t *testing.T) {
			state := NewRunState(model.RunParams{Venues: []string{"A"}, StartYear: 2020, EndYear: 2020, Sort: policy})
			state.Step(pairOf(0.4,
				paper("a", 2021, 0.5), paper("b", 2019, 0.5), paper("c", 2021, 0.9), paper("d", 2020, 0), paper("e", 2019, 0.5),
			), nil)

			once := slices.Clone(state.All)
			policy.Sort(state.All)
			if !slices.EqualFunc(once, state.All, func(a, b model.Paper) bool { return a.Title == b.Title }) {
				t.Errorf("re-sorting changed order: %v -> %v", once, state.All)
			}
		})
	}
}

func TestRunState_StableTies(t *testing.T) {
	state := NewRunState(model.RunParams{Venues: []string{"A"}, StartYear: 2020, EndYear: 2020, Sort: model.SortOldestFirst})
	state.Step(pairOf(0.4, paper("first", 2020, 0), paper("second", 2020, 0), paper("older", 2019, 0)), nil)

	var titles []string
	for _, p := range state.All {
		titles = append(titles, p.Title)
	}
	if strings.Join(titles, ",") != "older,first,second" {
		t.Errorf("expected stable order for equal years, got %v", titles)
	}
}

func TestRunState_SnapshotIsolated(t *testing.T) {
	state := NewRunState(model.RunParams{Venues: []string{"A"}, StartYear: 2020, EndYear: 2021})
	state.Step(pairOf(0.4, paper("a", 2020, 0.9, "X")), nil)

	snap := state.Snapshot(20, false)
	snap.Papers[0].Title = "mutated"
	if state.All[0].Title != "a" {
		t.Error("snapshot shares paper storage with the run state")
	}
	snap.Papers[0].Authors[0] = "mutated"
	snap.Filtered[0].Authors[0] = "mutated"
	if state.All[0].Authors[0] != "X" || state.Filtered[0].Authors[0] != "X" {
		t.Error("snapshot shares author lists with the run state")
	}
	if snap.ProgressPct != 50 {
		t.Errorf("expected 50%% progress, got %v", snap.ProgressPct)
	}
}
