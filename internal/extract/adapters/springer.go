package adapters

import "golang.org/x/net/html"

// SpringerAdapter reads Springer Link chapter and article pages
type SpringerAdapter struct {
	BaseAdapter
}

// NewSpringerAdapter creates a new Springer adapter
func NewSpringerAdapter() *SpringerAdapter {
	return &SpringerAdapter{BaseAdapter{hostPatterns: []string{"springer.com"}}}
}

// Name returns the adapter name
func (a *SpringerAdapter) Name() string {
	return "springer"
}

// ExtractAbstract prefers section.Abstract, falling back to dc.Description
func (a *SpringerAdapter) ExtractAbstract(doc *html.Node) (string, bool) {
	if text, ok := a.containerText(a.ElementWithClasses(doc, "section", "Abstract")); ok {
		return text, true
	}
	return a.MetaContent(doc, "dc.Description")
}
