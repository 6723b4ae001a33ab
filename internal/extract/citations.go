package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Citation is one entry of an index result listing
type Citation struct {
	Title   string
	Authors []string
	Link    string
}

// Listing is the parsed result page
type Listing struct {
	Citations []Citation
	Skipped   int // cite.data nodes without a title
}

// ParseCitations reads every cite.data node of an index result page.
// Entries without a title field are skipped and counted. The link is the
// electronic-edition (li.ee) link of the citation's enclosing li.entry, since
// an entry usually carries several unrelated links.
func ParseCitations(r io.Reader, pageURL string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}

	listing := &Listing{}
	doc.Find("cite.data").Each(func(_ int, cite *goquery.Selection) {
		titleSel := cite.Find("span.title").First()
		if titleSel.Length() == 0 {
			listing.Skipped++
			return
		}

		var authors []string
		cite.Find(`span[itemprop="author"]`).Each(func(_ int, a *goquery.Selection) {
			authors = append(authors, strings.TrimSpace(a.Text()))
		})

		listing.Citations = append(listing.Citations, Citation{
			Title:   strings.TrimSpace(titleSel.Text()),
			Authors: authors,
			Link:    electronicEdition(cite, base),
		})
	})

	return listing, nil
}

func electronicEdition(cite *goquery.Selection, base *url.URL) string {
	entry := cite.Closest("li.entry")
	if entry.Length() == 0 {
		return ""
	}
	href, ok := entry.Find("li.ee").First().Find("a").First().Attr("href")
	if !ok {
		return ""
	}
	return resolveURL(base, strings.TrimSpace(href))
}

// resolveURL resolves a relative URL against a base URL, keeping only
// http(s) targets
func resolveURL(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
