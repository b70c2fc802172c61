package parse

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// hidden lists elements whose text a reader never sees.
var hidden = map[string]bool{"script": true, "style": true, "noscript": true, "template": true} //nolint: gochecknoglobals

// VisibleText returns the text a reader would see in sel: script, style,
// noscript and template content skipped, element boundaries treated as
// spaces, whitespace collapsed and trimmed.
func VisibleText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}

	var b strings.Builder
	for _, n := range sel.Nodes {
		writeVisible(&b, n)
	}

	return CollapseSpace(b.String())
}

func writeVisible(b *strings.Builder, n *html.Node) {
	switch n.Type { //nolint: exhaustive
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode, html.DocumentNode:
		if hidden[n.Data] {
			return
		}
		b.WriteByte(' ')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeVisible(b, c)
		}
		b.WriteByte(' ')
	}
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ListItems is a Strategy.Text override that joins the visible text of each
// li, tr or dd below the matched node with newlines, so list extractors can
// split entries apart.
func ListItems(sel *goquery.Selection) string {
	items := sel.Find("li, tr, dd")
	if items.Length() == 0 {
		return VisibleText(sel)
	}

	lines := make([]string, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		if t := VisibleText(item); t != "" {
			lines = append(lines, t)
		}
	})

	return strings.Join(lines, "\n")
}

// Labeled builds a label/value Strategy matching table cells, headers and
// definition terms whose own text contains label.
func Labeled(name, label string) Strategy {
	return Strategy{
		Name: name,
		Selectors: []string{
			fmt.Sprintf("td:containsOwn(%q)", label),
			fmt.Sprintf("th:containsOwn(%q)", label),
			fmt.Sprintf("dt:containsOwn(%q)", label),
		},
		AdjacentCell: true,
	}
}
