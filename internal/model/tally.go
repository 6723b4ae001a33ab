package model

import (
	"fmt"
	"slices"
	"strings"
)

// AuthorCount is one row of the author leaderboard
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// AuthorTally counts matched papers per author. Names match exactly and
// case-sensitively. First-seen order is kept to break ties.
type AuthorTally struct {
	counts map[string]int
	order  []string
}

// NewAuthorTally creates an empty tally
func NewAuthorTally() *AuthorTally {
	return &AuthorTally{counts: make(map[string]int)}
}

// Add increments an author's count by n
func (t *AuthorTally) Add(author string, n int) {
	if n <= 0 {
		return
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, seen := t.counts[author]; !seen {
		t.order = append(t.order, author)
	}
	t.counts[author] += n
}

// AddAuthors increments once per occurrence, so a repeated name counts twice
func (t *AuthorTally) AddAuthors(authors []string) {
	for _, a := range authors {
		t.Add(a, 1)
	}
}

// Merge folds another tally into this one, preserving the other's first-seen order
func (t *AuthorTally) Merge(other *AuthorTally) {
	if other == nil {
		return
	}
	for _, a := range other.order {
		t.Add(a, other.counts[a])
	}
}

// Count returns the count for an author
func (t *AuthorTally) Count(author string) int {
	if t == nil {
		return 0
	}
	return t.counts[author]
}

// Len returns the number of distinct authors
func (t *AuthorTally) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Top returns the n highest counts, ties in first-seen order. n <= 0 returns all.
func (t *AuthorTally) Top(n int) []AuthorCount {
	if t == nil {
		return nil
	}
	rows := make([]AuthorCount, 0, len(t.order))
	for _, a := range t.order {
		rows = append(rows, AuthorCount{Author: a, Count: t.counts[a]})
	}
	slices.SortStableFunc(rows, func(a, b AuthorCount) int {
		return b.Count - a.Count
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// FormatAuthors renders leaderboard rows one per line
func FormatAuthors(rows []AuthorCount) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s: %d papers", r.Author, r.Count)
	}
	return strings.Join(lines, "\n")
}
