package adapters

import "golang.org/x/net/html"

// IEEEAdapter reads IEEE Xplore document pages
type IEEEAdapter struct {
	BaseAdapter
}

// NewIEEEAdapter creates a new IEEE adapter
func NewIEEEAdapter() *IEEEAdapter {
	return &IEEEAdapter{BaseAdapter{hostPatterns: []string{"ieeexplore.ieee.org"}}}
}

// Name returns the adapter name
func (a *IEEEAdapter) Name() string {
	return "ieee"
}

// ExtractAbstract prefers div.abstract-text. Xplore renders most of the page
// client side, so the description meta tag is often the only copy.
func (a *IEEEAdapter) ExtractAbstract(doc *html.Node) (string, bool) {
	if text, ok := a.containerText(a.ElementWithClasses(doc, "div", "abstract-text")); ok {
		return text, true
	}
	return a.MetaContent(doc, "description")
}
