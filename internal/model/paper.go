package model

import (
	"fmt"
	"slices"
	"strings"
)

// Paper is one citation pulled from the bibliographic index
type Paper struct {
	Title    string   `json:"title"`              // Text of the citation's title field
	Authors  []string `json:"authors"`            // Listing order, duplicates preserved
	Link     string   `json:"link"`               // Electronic edition link (may be empty)
	Score    float64  `json:"score"`              // Rounded similarity, 0 when not matched
	Year     int      `json:"year"`               // Year the (venue, year) pair was queried for
	Venue    string   `json:"venue,omitempty"`    // Venue key the citation was listed under
	Abstract string   `json:"abstract,omitempty"` // Publisher abstract, empty unless retrieval succeeded
}

// Format renders the paper as a display block
func (p Paper) Format() string {
	return fmt.Sprintf("%d | Score: %.2f\nTitle: %s\nAuthors: %s\nLink: %s",
		p.Year, p.Score, p.Title, strings.Join(p.Authors, ", "), p.Link)
}

// FormatPapers joins display blocks with a blank line between papers
func FormatPapers(papers []Paper) string {
	blocks := make([]string, len(papers))
	for i, p := range papers {
		blocks[i] = p.Format()
	}
	return strings.Join(blocks, "\n\n")
}

// SortPolicy selects the ordering applied to paper lists after every update
type SortPolicy string

const (
	SortRelevance       SortPolicy = "relevance"   // Descending score
	SortMostRecentFirst SortPolicy = "most-recent" // Descending year
	SortOldestFirst     SortPolicy = "oldest"      // Ascending year
)

// ParseSortPolicy accepts the CLI spellings as well as the display labels
func ParseSortPolicy(s string) (SortPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relevance", "":
		return SortRelevance, nil
	case "most-recent", "most recent first", "recent", "newest":
		return SortMostRecentFirst, nil
	case "oldest", "oldest first":
		return SortOldestFirst, nil
	default:
		return "", fmt.Errorf("unknown sort policy: %s (supported: relevance, most-recent, oldest)", s)
	}
}

func (p SortPolicy) String() string {
	switch p {
	case SortMostRecentFirst:
		return "Most Recent First"
	case SortOldestFirst:
		return "Oldest First"
	default:
		return "Relevance"
	}
}

// Compare orders two papers under the policy. Equal keys compare as 0 so a
// stable sort keeps insertion order.
func (p SortPolicy) Compare(a, b Paper) int {
	switch p {
	case SortMostRecentFirst:
		return b.Year - a.Year
	case SortOldestFirst:
		return a.Year - b.Year
	default:
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	}
}

// Sort stable-sorts papers in place
func (p SortPolicy) Sort(papers []Paper) {
	slices.SortStableFunc(papers, p.Compare)
}
