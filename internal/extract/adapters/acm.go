package adapters

import "golang.org/x/net/html"

// ACMAdapter reads the abstract section of ACM Digital Library pages
type ACMAdapter struct {
	BaseAdapter
}

// NewACMAdapter creates a new ACM adapter
func NewACMAdapter() *ACMAdapter {
	return &ACMAdapter{BaseAdapter{hostPatterns: []string{"acm.org"}}}
}

// Name returns the adapter name
func (a *ACMAdapter) Name() string {
	return "acm"
}

// ExtractAbstract returns the text of div.abstractSection
func (a *ACMAdapter) ExtractAbstract(doc *html.Node) (string, bool) {
	return a.containerText(a.ElementWithClasses(doc, "div", "abstractSection"))
}
