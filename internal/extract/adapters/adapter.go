package adapters

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Adapter extracts an abstract from one publisher family's pages
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle reports whether the page at rawURL belongs to this publisher
	CanHandle(rawURL string) bool

	// ExtractAbstract returns the abstract text, or false when the page has
	// no recognizable abstract container
	ExtractAbstract(doc *html.Node) (string, bool)
}

// Registry holds adapters in priority order
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the built-in publisher rules, checked
// in order: ACM, IEEE, Springer, ScienceDirect.
func NewRegistry() *Registry {
	registry := &Registry{}

	registry.Register(NewACMAdapter())
	registry.Register(NewIEEEAdapter())
	registry.Register(NewSpringerAdapter())
	registry.Register(NewScienceDirectAdapter())

	return registry
}

// Register appends an adapter at the lowest priority
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter returns the first adapter that handles rawURL
func (r *Registry) FindAdapter(rawURL string) (Adapter, bool) {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(rawURL) {
			return adapter, true
		}
	}
	return nil, false
}

// Names lists registered adapters in priority order
func (r *Registry) Names() []string {
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name()
	}
	return names
}

// BaseAdapter provides host matching and DOM helpers shared by adapters
type BaseAdapter struct {
	hostPatterns []string
}

// CanHandle checks the URL's host against the adapter's host substrings
func (b *BaseAdapter) CanHandle(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, pattern := range b.hostPatterns {
		if strings.Contains(host, pattern) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// ExtractText returns the node's text content with whitespace collapsed
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
			buf.WriteString(" ")
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(b.GetAttribute(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindFirst finds the first node matching a predicate, depth first
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if predicate(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := b.FindFirst(c, predicate); found != nil {
			return found
		}
	}
	return nil
}

// ElementWithClasses finds the first tag element carrying every class given
func (b *BaseAdapter) ElementWithClasses(doc *html.Node, tag string, classes ...string) *html.Node {
	return b.FindFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != tag {
			return false
		}
		for _, c := range classes {
			if !b.HasClass(n, c) {
				return false
			}
		}
		return true
	})
}

// MetaContent returns the content of <meta name="..."> if present
func (b *BaseAdapter) MetaContent(doc *html.Node, name string) (string, bool) {
	meta := b.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "meta" && b.GetAttribute(n, "name") == name
	})
	if meta == nil {
		return "", false
	}
	return strings.TrimSpace(b.GetAttribute(meta, "content")), true
}

// containerText returns the collapsed text of a container, or false if absent
func (b *BaseAdapter) containerText(n *html.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	return b.ExtractText(n), true
}
