// Package parse extracts typed values from provider HTML.
//
// A Config is pure data: an ordered list of strategies, each an ordered list
// of CSS selectors, plus fallback regular expressions run against the page's
// visible text. The first candidate text the Config's Extract function
// accepts wins. Finding nothing is a normal outcome reported as ok == false.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Strategy is one named attempt to locate a value.
type Strategy struct {
	Name string
	// Selectors are tried in order; the first one matching any node is used.
	Selectors []string
	// AdjacentCell reads the matched node's next element sibling, for
	// label/value layouts such as <td>Year Built</td><td>1985</td>.
	AdjacentCell bool
	// Text overrides how text is read from the matched node.
	Text func(*goquery.Selection) string
}

// Config describes how to find one field on one provider's page.
type Config[T any] struct {
	Strategies []Strategy
	// Extract turns candidate text into a value. It must be pure.
	Extract func(text string) (T, bool)
	// Patterns run against the document's visible text when no strategy
	// produced a value. Capture group 1 is the candidate when present.
	Patterns []*regexp.Regexp
}

// Parse runs cfg against doc.
func Parse[T any](doc *goquery.Document, cfg Config[T]) (T, bool) {
	var zero T
	if doc == nil || cfg.Extract == nil {
		return zero, false
	}

	for _, st := range cfg.Strategies {
		for _, sel := range st.Selectors {
			text, ok := selectText(doc, st, sel)
			if !ok {
				continue
			}
			if v, ok := extract(cfg.Extract, text); ok {
				return v, true
			}
		}
	}

	if len(cfg.Patterns) == 0 {
		return zero, false
	}

	visible := VisibleText(doc.Selection)
	for _, re := range cfg.Patterns {
		for _, m := range re.FindAllStringSubmatch(visible, -1) {
			candidate := m[0]
			if len(m) > 1 && m[1] != "" {
				candidate = m[1]
			}
			if v, ok := extract(cfg.Extract, candidate); ok {
				return v, true
			}
		}
	}

	return zero, false
}

// ParseHTML parses raw HTML and runs cfg against it.
func ParseHTML[T any](raw string, cfg Config[T]) (T, bool) {
	doc, err := Document(raw)
	if err != nil {
		var zero T

		return zero, false
	}

	return Parse(doc, cfg)
}

// strayCell finds table row and cell tags. The HTML5 document parser drops
// them when they sit outside a table.
var strayCell = regexp.MustCompile(`(?i)<t[dhr][\s>/]`) //nolint: gochecknoglobals

// Document parses raw HTML into a goquery document. A fragment made of bare
// table rows or cells, with no table around them, is parsed as the body of a
// table so the cells survive.
func Document(raw string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}

	if doc.Find("table").Length() > 0 || !strayCell.MatchString(raw) {
		return doc, nil
	}

	rows, err := tableFragment(raw)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromNode(rows), nil
}

// tableFragment parses raw in a tbody context and returns a document holding
// html > body > table > tbody > (parsed nodes).
func tableFragment(raw string) (*html.Node, error) {
	tbody := &html.Node{Type: html.ElementNode, Data: "tbody", DataAtom: atom.Tbody}
	nodes, err := html.ParseFragment(strings.NewReader(raw), tbody)
	if err != nil {
		return nil, fmt.Errorf("could not parse html fragment: %w", err)
	}
	for _, n := range nodes {
		tbody.AppendChild(n)
	}

	table := &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}
	table.AppendChild(tbody)
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	body.AppendChild(table)
	root := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	root.AppendChild(body)
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(root)

	return doc, nil
}

// selectText returns the candidate text for sel, or false when sel is
// invalid, matches nothing, or yields empty text. A panic inside a custom
// Text function counts as no match.
func selectText(doc *goquery.Document, st Strategy, sel string) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	m, err := cascadia.Compile(sel)
	if err != nil {
		return "", false
	}

	node := doc.FindMatcher(m).First()
	if node.Length() == 0 {
		return "", false
	}

	switch {
	case st.AdjacentCell:
		text = VisibleText(node.Next())
	case st.Text != nil:
		text = strings.TrimSpace(st.Text(node))
	default:
		text = VisibleText(node)
	}

	return text, text != ""
}

func extract[T any](fn func(string) (T, bool), text string) (v T, ok bool) {
	defer func() {
		if recover() != nil {
			var zero T
			v, ok = zero, false
		}
	}()

	return fn(text)
}
