package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// nonContentElements are skipped entirely during text collection.
// Scripts and styles are code, and navigation chrome repeats on every
// page of a site, which would drown keyword statistics in boilerplate.
var nonContentElements = map[string]struct{}{
	"script": {},
	"style":  {},
	"nav":    {},
	"header": {},
	"footer": {},
}

// Extractor pulls the title, the visible text, and the outgoing links
// out of one HTML page.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Extractor struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative links.
	baseURL *url.URL
}

// Result contains everything extracted from one HTML page.
type Result struct {
	// Title is the page title from the <title> tag, falling back to the
	// first <h1> when the document has no usable title.
	Title string

	// VisibleText is the whitespace-collapsed text content of the page
	// with non-content elements removed.
	VisibleText string

	// Links holds the absolute http(s) links in document order with
	// duplicates removed (first occurrence wins). The crawler's
	// traversal order, and therefore every downstream tie-break,
	// depends on this order being preserved.
	Links []string
}

// NewExtractor creates an extractor that resolves links against the
// given base URL.
func NewExtractor(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{baseURL: u}, nil
}

// Extract parses the page and collects title, visible text, and links
// in a single DOM pass.
func (e *Extractor) Extract(body string) (*Result, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	result := &Result{Links: make([]string, 0)}

	var (
		text    strings.Builder
		firstH1 string
		seen    = map[string]struct{}{}
	)

	var walk func(n *html.Node, skipped bool)
	walk = func(n *html.Node, skipped bool) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "title":
				if result.Title == "" {
					result.Title = strings.TrimSpace(nodeText(n))
				}
			case "h1":
				if firstH1 == "" {
					firstH1 = strings.TrimSpace(nodeText(n))
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					if resolved := e.resolveURL(href); resolved != "" {
						if _, ok := seen[resolved]; !ok {
							seen[resolved] = struct{}{}
							result.Links = append(result.Links, resolved)
						}
					}
				}
			}
			if _, skip := nonContentElements[n.Data]; skip {
				skipped = true
			}
		case html.TextNode:
			if !skipped {
				text.WriteString(n.Data)
				text.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skipped)
		}
	}
	walk(doc, false)

	if result.Title == "" {
		result.Title = firstH1
	}
	result.VisibleText = collapseSpace(text.String())

	return result, nil
}

// resolveURL resolves a relative link against the base URL and filters
// out non-navigational schemes. Returns "" when the link cannot become
// an absolute http(s) URL.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Allows the crawler's same-host check to work on hostnames
//  3. Reduces ambiguity in results
func (e *Extractor) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := e.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// nodeText concatenates the direct and nested text of a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSpace normalizes all whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
