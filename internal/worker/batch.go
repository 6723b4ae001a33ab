package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ppiankov/paperscout/internal/model"
)

// Runner executes one complete aggregation run
type Runner interface {
	Run(ctx context.Context, params model.RunParams) (*model.Report, error)
}

// QueryJob runs one query over the shared venue/year selection
type QueryJob struct {
	Index  int
	Params model.RunParams
	Runner Runner
}

// Execute executes the query job
func (j *QueryJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, j.Params)
	return &QueryResult{
		Index:  j.Index,
		Query:  j.Params.Query,
		Report: report,
		Error:  err,
	}
}

// QueryResult represents the result of a query job
type QueryResult struct {
	Index  int
	Query  string
	Report *model.Report
	Error  error
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor runs independent queries concurrently. Each run keeps its
// own state and stays single-threaded.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessQueries runs every query with base's venues, years and sort policy.
// Results are returned in input order.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, base model.RunParams, queries []string) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, query := range queries {
		params := base
		params.Venues = slices.Clone(base.Venues)
		params.Query = query
		pool.Submit(&QueryJob{Index: i, Params: params, Runner: b.runner})
	}

	results := pool.Wait()

	queryResults := make([]*QueryResult, 0, len(results))
	for _, result := range results {
		queryResults = append(queryResults, result.(*QueryResult))
	}
	slices.SortFunc(queryResults, func(a, b *QueryResult) int {
		return a.Index - b.Index
	})

	return queryResults
}

// ProcessFile reads queries from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, base model.RunParams, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, base, queries), nil
}

// ReadQueriesFromFile reads queries from a file (one per line). Blank lines
// and lines starting with # are skipped; repeated queries run once.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
