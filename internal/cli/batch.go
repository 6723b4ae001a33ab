package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/paperscout/internal/pipeline"
	"github.com/ppiankov/paperscout/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchFlags  runFlags
	concurrency int
	outputDir   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run several queries over the same conferences in parallel",
	Long: `Batch reads one query per line (blank lines and # comments are skipped)
and runs each as an independent search over the same conferences and years.
Queries run concurrently; every run keeps its own results.

A JSON and a Markdown report are written per query.

Example:
  paperscout batch queries.txt --tier a-star --from 2022 --to 2024
  paperscout batch queries.txt --venue OSDI --venue SOSP --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addRunFlags(batchCmd.Flags(), &batchFlags)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent queries (default from config, 2)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./paperscout-reports", "output directory for reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	batchFlags.apply(cmd.Flags(), cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	base, unknown, err := batchFlags.params("")
	if err != nil {
		return err
	}
	for _, key := range unknown {
		fmt.Fprintf(os.Stderr, "Warning: unknown conference %q ignored\n", key)
	}
	if len(base.Venues) == 0 {
		return fmt.Errorf("%s", pipeline.NoVenuesStatus)
	}

	ctx, cancel := withOptionalTimeout(cmd.Context(), batchFlags.timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Paperscout Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Conferences:  %s\n", strings.Join(base.Venues, ", "))
	fmt.Fprintf(os.Stderr, "  Years:        %d-%d\n", base.StartYear, base.EndYear)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := checkEncoder(ctx, cfg); err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logWriter(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results, err := processor.ProcessFile(ctx, base, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	renderer := pipeline.NewRenderer()

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query, result.Error)
			continue
		}

		slug := fmt.Sprintf("%02d-%s", result.Index+1, sanitizeFilename(result.Query))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Query, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Query, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d of %d papers matched)\n", result.Query, len(result.Report.Filtered), len(result.Report.Papers))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

const maxFilenameRunes = 60

// sanitizeFilename turns a query into a short file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.ToLower(strings.TrimSpace(s)))

	if runes := []rune(s); len(runes) > maxFilenameRunes {
		s = string(runes[:maxFilenameRunes])
	}
	if s == "" {
		s = "query"
	}
	return s
}
