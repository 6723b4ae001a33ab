// Smoke test for the publisher abstract rules against live pages.
// Publishers change their markup; run this when abstracts start coming back empty.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/pipeline"
)

func main() {
	fmt.Println("=== Publisher Abstract Probe ===")
	fmt.Println()

	// One known paper per publisher rule
	testURLs := []string{
		"https://dl.acm.org/doi/10.1145/3132747.3132765",
		"https://ieeexplore.ieee.org/document/8416290",
		"https://link.springer.com/chapter/10.1007/978-3-030-29400-7_1",
		"https://www.sciencedirect.com/science/article/pii/S0743731518305094",
		"https://www.usenix.org/conference/osdi20/presentation/gujarati",
	}
	if len(os.Args) > 1 {
		testURLs = os.Args[1:]
	}

	cfg := model.DefaultConfig()
	cfg.HTTP.AbstractTimeout = 20 * time.Second
	retriever := pipeline.NewRetriever(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failures := 0
	for _, url := range testURLs {
		fmt.Printf("Testing: %s\n", url)
		fmt.Println(strings.Repeat("-", 60))

		abstract := retriever.Retrieve(ctx, url)
		switch abstract.Status {
		case model.AbstractFound:
			fmt.Printf("  ✓ Abstract found (%d chars)\n", len(abstract.Text))
			fmt.Printf("    %s\n", preview(abstract.Text, 160))
		case model.AbstractUnsupported:
			fmt.Printf("  - No rule for this publisher\n")
		default:
			failures++
			fmt.Printf("  ⚠️  %s: %s\n", abstract.Status, abstract.Text)
		}
		fmt.Println()
	}

	fmt.Println("=== Probe Complete ===")
	if failures > 0 {
		fmt.Printf("%d page(s) did not yield an abstract\n", failures)
		os.Exit(1)
	}
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
