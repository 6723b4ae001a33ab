package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/paperscout/internal/model"
)

// mockRunner records the params it was called with
type mockRunner struct {
	mu       sync.Mutex
	failOn   string
	received []model.RunParams
}

func (m *mockRunner) Run(ctx context.Context, params model.RunParams) (*model.Report, error) {
	time.Sleep(10 * time.Millisecond)

	m.mu.Lock()
	m.received = append(m.received, params)
	m.mu.Unlock()

	if params.Query == m.failOn {
		return nil, errors.New("reference embedding unavailable")
	}
	return &model.Report{RunID: "run-" + params.Query, Params: params}, nil
}

func baseParams() model.RunParams {
	return model.RunParams{
		Venues:    []string{"OSDI", "SOSP"},
		StartYear: 2021,
		EndYear:   2022,
		Sort:      model.SortRelevance,
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessQueries(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	queries := []string{"gpu scheduling", "consensus protocols", "persistent memory"}
	results := processor.ProcessQueries(context.Background(), baseParams(), queries)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Index != i || res.Query != queries[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Query, res.Error)
		}
		if res.Report == nil || res.Report.Params.Query != queries[i] {
			t.Errorf("expected report for %q", queries[i])
			continue
		}
		if len(res.Report.Params.Venues) != 2 || res.Report.Params.StartYear != 2021 {
			t.Errorf("expected shared venue/year selection, got %+v", res.Report.Params)
		}
	}
}

func TestBatchProcessor_ProcessQueries_Error(t *testing.T) {
	runner := &mockRunner{failOn: "bad"}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessQueries(context.Background(), baseParams(), []string{"good", "bad"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].GetError() != nil {
		t.Errorf("expected first query to succeed, got %v", results[0].GetError())
	}
	if results[1].GetError() == nil {
		t.Error("expected second query to fail")
	}
}

func TestBatchProcessor_ProcessQueries_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2)
	results := processor.ProcessQueries(context.Background(), baseParams(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessQueries_ManyJobs(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 3)

	var queries []string
	for i := 0; i < 25; i++ {
		queries = append(queries, strings.Repeat("q", i+1))
	}

	results := processor.ProcessQueries(context.Background(), baseParams(), queries)
	if len(results) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(results))
	}
}

func TestReadQueriesFromFile(t *testing.T) {
	path := writeTemp(t, "GPU scheduling systems\n# comment\nByzantine consensus\n   \n  serverless cold start  \nGPU scheduling systems\n")

	queries, err := ReadQueriesFromFile(path)
	if err != nil {
		t.Fatalf("ReadQueriesFromFile failed: %v", err)
	}

	expected := []string{"GPU scheduling systems", "Byzantine consensus", "serverless cold start"}
	if len(queries) != len(expected) {
		t.Fatalf("expected %d queries, got %d: %v", len(expected), len(queries), queries)
	}
	for i, q := range queries {
		if q != expected[i] {
			t.Errorf("expected query %q at index %d, got %q", expected[i], i, q)
		}
	}
}

func TestReadQueriesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadQueriesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTemp(t, "a\nb\n# c\n")
	processor := NewBatchProcessor(&mockRunner{}, 2)

	results, err := processor.ProcessFile(context.Background(), baseParams(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2)
	if _, err := processor.ProcessFile(context.Background(), baseParams(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
