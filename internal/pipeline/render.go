package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/paperscout/internal/model"
)

// Renderer writes run reports as JSON, Markdown and a terminal summary
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Paper search: %s\n\n", report.Params.Query)
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Venues: %s\n", strings.Join(report.Params.Venues, ", "))
	fmt.Fprintf(&b, "- Years: %d-%d\n", report.Params.StartYear, report.Params.EndYear)
	fmt.Fprintf(&b, "- Sort: %s\n", report.Params.Sort)
	fmt.Fprintf(&b, "- Threshold: %.2f\n", report.Threshold)
	fmt.Fprintf(&b, "- Pairs processed: %d\n", report.Pairs)
	fmt.Fprintf(&b, "- Papers: %d fetched, %d matching\n\n", len(report.Papers), len(report.Filtered))

	b.WriteString("## Matching papers\n\n")
	if len(report.Filtered) == 0 {
		b.WriteString("_No papers above the threshold._\n\n")
	}
	for _, p := range report.Filtered {
		writePaper(&b, p)
	}

	b.WriteString("## Top authors\n\n")
	if len(report.TopAuthors) == 0 {
		b.WriteString("_None._\n\n")
	} else {
		b.WriteString("| Author | Papers |\n|---|---|\n")
		for _, a := range report.TopAuthors {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(a.Author), a.Count)
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writePaper(b *strings.Builder, p model.Paper) {
	fmt.Fprintf(b, "### %s\n\n", p.Title)
	fmt.Fprintf(b, "%d | Score: %.2f", p.Year, p.Score)
	if p.Venue != "" {
		fmt.Fprintf(b, " | %s", p.Venue)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(b, "Authors: %s\n\n", strings.Join(p.Authors, ", "))
	if p.Link != "" {
		fmt.Fprintf(b, "Link: <%s>\n\n", p.Link)
	}
	if p.Abstract != "" {
		fmt.Fprintf(b, "> %s\n\n", p.Abstract)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// RenderSummary prints the matching papers and the author leaderboard
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	_, _ = fmt.Fprintf(w, "Total papers retrieved: %d\n", len(report.Papers))
	_, _ = fmt.Fprintf(w, "Total matching papers: %d\n", len(report.Filtered))

	if len(report.Filtered) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", model.FormatPapers(report.Filtered))
	}
	if len(report.TopAuthors) > 0 {
		_, _ = fmt.Fprintf(w, "\nTop authors:\n%s\n", model.FormatAuthors(report.TopAuthors))
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
