package model

import (
	"errors"
	"strings"
	"testing"
)

func TestPaper_Format(t *testing.T) {
	p := Paper{Title: "GPU Scheduling", Authors: []string{"Ada", "Grace"}, Link: "https://dl.acm.org/doi/1", Score: 0.876, Year: 2021}
	want := "2021 | Score: 0.88\nTitle: GPU Scheduling\nAuthors: Ada, Grace\nLink: https://dl.acm.org/doi/1"
	if got := p.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if got := FormatPapers([]Paper{p, p}); strings.Count(got, "\n\n") != 1 {
		t.Errorf("expected blocks separated by a blank line, got %q", got)
	}
	if FormatPapers(nil) != "" {
		t.Error("expected empty display for no papers")
	}
}

func TestParseSortPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want SortPolicy
	}{
		{"", SortRelevance},
		{"Relevance", SortRelevance},
		{"most-recent", SortMostRecentFirst},
		{"Most Recent First", SortMostRecentFirst},
		{"oldest", SortOldestFirst},
		{"Oldest First", SortOldestFirst},
	}
	for _, tt := range tests {
		got, err := ParseSortPolicy(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseSortPolicy(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseSortPolicy("alphabetical"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestSortPolicy_Sort(t *testing.T) {
	papers := []Paper{
		{Title: "a", Year: 2020, Score: 0.5},
		{Title: "b", Year: 2022, Score: 0.9},
		{Title: "c", Year: 2021, Score: 0.5},
	}

	tests := []struct {
		policy SortPolicy
		want   string
	}{
		{SortRelevance, "bac"},
		{SortMostRecentFirst, "bca"},
		{SortOldestFirst, "acb"},
	}
	for _, tt := range tests {
		got := append([]Paper(nil), papers...)
		tt.policy.Sort(got)
		var order strings.Builder
		for _, p := range got {
			order.WriteString(p.Title)
		}
		if order.String() != tt.want {
			t.Errorf("%s: order = %s, want %s", tt.policy, order.String(), tt.want)
		}
	}
}

func TestAuthorTally(t *testing.T) {
	tally := NewAuthorTally()
	tally.AddAuthors([]string{"Bob", "Ada", "Ada"})
	tally.Add("Cy", 0)

	other := NewAuthorTally()
	other.AddAuthors([]string{"Cy", "Bob"})
	tally.Merge(other)
	tally.Merge(nil)

	if tally.Count("Ada") != 2 || tally.Count("Bob") != 2 || tally.Count("Cy") != 1 {
		t.Errorf("unexpected counts: %v", tally.Top(0))
	}
	if tally.Count("ada") != 0 {
		t.Error("names must match case-sensitively")
	}
	if tally.Len() != 3 {
		t.Errorf("expected 3 authors, got %d", tally.Len())
	}

	top := tally.Top(2)
	if len(top) != 2 || top[0].Author != "Bob" || top[1].Author != "Ada" {
		t.Errorf("expected ties broken by first-seen order, got %v", top)
	}

	if got := FormatAuthors(top); got != "Bob: 2 papers\nAda: 2 papers" {
		t.Errorf("unexpected author display %q", got)
	}

	var nilTally *AuthorTally
	if nilTally.Count("x") != 0 || nilTally.Len() != 0 || nilTally.Top(5) != nil {
		t.Error("nil tally should read as empty")
	}
}

func TestRunParams(t *testing.T) {
	p := RunParams{Venues: []string{"OSDI", "SOSP"}, StartYear: 2019, EndYear: 2021}
	if years := p.Years(); len(years) != 3 || years[0] != 2019 || years[2] != 2021 {
		t.Errorf("unexpected years %v", years)
	}
	if p.TotalPairs() != 6 {
		t.Errorf("expected 6 pairs, got %d", p.TotalPairs())
	}

	reversed := RunParams{Venues: []string{"OSDI"}, StartYear: 2022, EndYear: 2021}
	if reversed.TotalPairs() != 0 {
		t.Errorf("expected no pairs for reversed range, got %d", reversed.TotalPairs())
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Scoring.Threshold = 1 }},
		{"negative threshold", func(c *Config) { c.Scoring.Threshold = -0.1 }},
		{"negative top authors", func(c *Config) { c.Scoring.TopAuthors = -1 }},
		{"missing index", func(c *Config) { c.Index.BaseURL = "" }},
		{"unknown provider", func(c *Config) { c.Embedding.Primary.Provider = "word2vec" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPairError(t *testing.T) {
	cause := errors.New("unexpected status: 503")
	err := error(&PairError{Kind: KindTransport, Venue: "osdi", Year: 2021, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("expected PairError to unwrap to its cause")
	}
	if !IsKind(err, KindTransport) || IsKind(err, KindPairFailure) || IsKind(cause, KindTransport) {
		t.Error("IsKind misclassified the error")
	}
	if err.Error() != "osdi 2021: transport_error: unexpected status: 503" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAbstractStatus(t *testing.T) {
	if AbstractUnsupported.Kind() != KindUnsupported || AbstractFound.Kind() != "" {
		t.Error("unexpected kind mapping")
	}
	if !(Abstract{Status: AbstractFound}).OK() || (Abstract{Status: AbstractNotFound, Text: AbstractNotFoundText}).OK() {
		t.Error("OK must hold only for found abstracts")
	}
	if AbstractTransportError.String() != "transport_error" {
		t.Errorf("unexpected status string %q", AbstractTransportError.String())
	}
}

func TestLookupVenue(t *testing.T) {
	v, ok := LookupVenue("osdi")
	if !ok || v.Key != "OSDI" || v.Tier != "A*" {
		t.Errorf("unexpected venue %+v", v)
	}
	if _, ok := LookupVenue("NEURIPS"); ok {
		t.Error("expected unknown venue")
	}
	if IndexKey(" EuroSys ") != "eurosys" {
		t.Errorf("unexpected index key %q", IndexKey(" EuroSys "))
	}
}
