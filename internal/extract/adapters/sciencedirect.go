package adapters

import "golang.org/x/net/html"

// ScienceDirectAdapter reads Elsevier ScienceDirect article pages
type ScienceDirectAdapter struct {
	BaseAdapter
}

// NewScienceDirectAdapter creates a new ScienceDirect adapter
func NewScienceDirectAdapter() *ScienceDirectAdapter {
	return &ScienceDirectAdapter{BaseAdapter{hostPatterns: []string{"sciencedirect.com"}}}
}

// Name returns the adapter name
func (a *ScienceDirectAdapter) Name() string {
	return "sciencedirect"
}

// ExtractAbstract returns the text of the author abstract (div.abstract.author)
func (a *ScienceDirectAdapter) ExtractAbstract(doc *html.Node) (string, bool) {
	return a.containerText(a.ElementWithClasses(doc, "div", "abstract", "author"))
}
