package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/paperscout/internal/embedding"
	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runFlags are shared by search and batch
type runFlags struct {
	venues     []string
	tiers      []string
	fromYear   int
	toYear     int
	sort       string
	threshold  float64
	topAuthors int
	timeout    time.Duration
	provider   string
	model      string
	noCache    bool
	robots     bool
	httpProxy  string
	httpsProxy string
	indexURL   string
}

var (
	searchFlags runFlags
	query       string
	outJSON     string
	outMD       string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search conference papers by semantic similarity",
	Long: `Search fetches the papers of every selected conference and year from the
bibliographic index, retrieves their abstracts where a publisher rule exists,
and keeps the papers whose similarity to the query exceeds the threshold.

Example:
  paperscout search --venue OSDI --venue SOSP --from 2020 --to 2024 "GPU scheduling systems"
  paperscout search --tier a-star --from 2023 --to 2023 -q "persistent memory" --sort most-recent
  paperscout search --venue EuroSys --from 2022 --to 2024 -q "serverless" --json out.json --md out.md`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	addRunFlags(searchCmd.Flags(), &searchFlags)
	searchCmd.Flags().StringVarP(&query, "query", "q", "", "research interest (alternatively pass it as arguments)")
	searchCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	searchCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
}

func addRunFlags(fs *pflag.FlagSet, f *runFlags) {
	current := time.Now().Year()

	fs.StringSliceVar(&f.venues, "venue", nil, "conference key, repeatable (see 'paperscout venues')")
	fs.StringSliceVar(&f.tiers, "tier", nil, "select every conference of a tier: a-star, a")
	fs.IntVar(&f.fromYear, "from", current-1, "first year (inclusive)")
	fs.IntVar(&f.toYear, "to", current-1, "last year (inclusive)")
	fs.StringVar(&f.sort, "sort", "relevance", "sort policy: relevance, most-recent, oldest")
	fs.Float64Var(&f.threshold, "threshold", 0, "similarity a paper must exceed (default from config, 0.4)")
	fs.IntVar(&f.topAuthors, "top-authors", 0, "authors in the leaderboard (default from config, 20)")
	fs.DurationVar(&f.timeout, "timeout", 0, "overall timeout (0 = none)")
	fs.StringVar(&f.provider, "provider", "", "embedding provider: ollama, openai, gemini")
	fs.StringVar(&f.model, "model", "", "embedding model name")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable in-process abstract and embedding memoization")
	fs.BoolVar(&f.robots, "respect-robots", false, "skip publisher pages disallowed by robots.txt")
	fs.StringVar(&f.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	fs.StringVar(&f.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	fs.StringVar(&f.indexURL, "index-url", "", "bibliographic index search endpoint")
}

// apply overlays the flags the user actually set onto cfg
func (f *runFlags) apply(fs *pflag.FlagSet, cfg *model.Config) {
	if fs.Changed("threshold") {
		cfg.Scoring.Threshold = f.threshold
	}
	if fs.Changed("top-authors") {
		cfg.Scoring.TopAuthors = f.topAuthors
	}
	if f.provider != "" && !strings.EqualFold(f.provider, cfg.Embedding.Primary.Provider) {
		cfg.Embedding.Primary = model.ProviderConfig{
			Provider: strings.ToLower(f.provider),
			Timeout:  cfg.Embedding.Primary.Timeout,
		}
		cfg.Embedding.Primary.APIKey = embedding.APIKeyFromEnv(cfg.Embedding.Primary.Provider)
	}
	if f.model != "" {
		cfg.Embedding.Primary.Model = f.model
		cfg.Embedding.Primary.Dimensions = 0
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if f.robots {
		cfg.Robots.Respect = true
	}
	if f.httpProxy != "" {
		cfg.HTTP.HTTPProxy = f.httpProxy
	}
	if f.httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = f.httpsProxy
	}
	if f.indexURL != "" {
		cfg.Index.BaseURL = f.indexURL
	}
}

// params resolves the run parameters. Unknown venue keys are reported and dropped.
func (f *runFlags) params(q string) (model.RunParams, []string, error) {
	policy, err := model.ParseSortPolicy(f.sort)
	if err != nil {
		return model.RunParams{}, nil, err
	}
	venues, unknown, err := resolveVenues(f.venues, f.tiers)
	if err != nil {
		return model.RunParams{}, nil, err
	}
	return model.RunParams{
		Venues:    venues,
		StartYear: f.fromYear,
		EndYear:   f.toYear,
		Query:     q,
		Sort:      policy,
	}, unknown, nil
}

// resolveVenues expands tiers and canonicalizes keys, keeping the caller's order
func resolveVenues(keys, tiers []string) ([]string, []string, error) {
	var venues, unknown []string
	seen := make(map[string]bool)
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			venues = append(venues, key)
		}
	}

	for _, tier := range tiers {
		var list []model.Venue
		switch strings.ToLower(strings.TrimSpace(tier)) {
		case "a-star", "a*", "astar":
			list = model.AStarVenues
		case "a":
			list = model.AVenues
		default:
			return nil, nil, fmt.Errorf("unknown tier: %s (supported: a-star, a)", tier)
		}
		for _, v := range list {
			add(v.Key)
		}
	}

	for _, key := range keys {
		v, ok := model.LookupVenue(strings.TrimSpace(key))
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		add(v.Key)
	}
	return venues, unknown, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		q = strings.TrimSpace(strings.Join(args, " "))
	}
	if q == "" {
		return fmt.Errorf("a query is required (pass it as arguments or with --query)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	searchFlags.apply(cmd.Flags(), cfg)

	params, unknown, err := searchFlags.params(q)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		fmt.Fprintf(os.Stderr, "Warning: unknown conference %q ignored\n", key)
	}

	ctx, cancel := withOptionalTimeout(cmd.Context(), searchFlags.timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Query:       %s\n", params.Query)
		fmt.Fprintf(os.Stderr, "Conferences: %s\n", strings.Join(params.Venues, ", "))
		fmt.Fprintf(os.Stderr, "Years:       %d-%d\n", params.StartYear, params.EndYear)
		fmt.Fprintf(os.Stderr, "Encoder:     %s/%s\n", cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model)
		fmt.Fprintln(os.Stderr)
	}

	if err := checkEncoder(ctx, cfg); err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logWriter(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	started := time.Now().UTC()
	var final model.Snapshot
	for snap := range p.Snapshots(ctx, params) {
		printProgress(snap)
		final = snap
	}
	if final.Error != "" {
		return fmt.Errorf("search failed: %s", final.Error)
	}

	report := pipeline.NewReport(params, cfg.Scoring.Threshold, started, final)
	if err := p.RenderReport(os.Stdout, report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

func printProgress(snap model.Snapshot) {
	if snap.Final && snap.TotalPairs == 0 {
		fmt.Fprintln(os.Stderr, snap.FetchedStatus)
		return
	}
	fmt.Fprintf(os.Stderr, "[%6.2f%%] %s %s\n", snap.ProgressPct, snap.FetchedStatus, snap.MatchedStatus)
}

// checkEncoder fails fast when the local Ollama server is down and no
// fallback provider is configured to stand in for it
func checkEncoder(ctx context.Context, cfg *model.Config) error {
	primary := cfg.Embedding.Primary
	if !strings.EqualFold(primary.Provider, "ollama") || cfg.Embedding.Fallback.Provider != "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p := embedding.NewOllamaProvider(primary, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	defer func() { _ = p.Close() }()
	if p.IsAvailable(ctx) {
		return nil
	}

	baseURL, modelName := primary.BaseURL, primary.Model
	if baseURL == "" {
		baseURL = embedding.DefaultOllamaURL
	}
	if modelName == "" {
		modelName = embedding.DefaultOllamaModel
	}
	return fmt.Errorf("ollama is not reachable at %s (run 'ollama serve' and 'ollama pull %s', or choose --provider openai|gemini)", baseURL, modelName)
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
