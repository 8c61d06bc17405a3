package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	nonVisibleContent = "script, style, noscript, template"
	hiddenContent     = `[hidden], [style*="display:none"], [style*="display: none"], [style*="visibility:hidden"], [style*="visibility: hidden"]`
	blockElements     = "address, article, aside, blockquote, dd, div, dl, dt, figcaption, figure, footer, form, h1, h2, h3, h4, h5, h6, header, hr, li, main, nav, ol, p, pre, section, table, tr, ul"

	// lineBreak marks a rendered line break until whitespace has been collapsed.
	lineBreak = "\uE000"
)

// displayText approximates the element's rendered text. Source whitespace
// collapses to single spaces; <br> and block boundaries become newlines.
// Hidden or non-visible elements yield "".
func displayText(sel *goquery.Selection) string {
	if sel.Length() == 0 || isHidden(sel) || sel.Is(nonVisibleContent) {
		return ""
	}

	clone := sel.Clone()
	clone.Find(nonVisibleContent).Remove()
	clone.Find(hiddenContent).Remove()
	clone.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(breakNode())
	})
	clone.Find(blockElements).Each(func(_ int, block *goquery.Selection) {
		block.AppendNodes(breakNode())
	})

	var lines []string
	for _, line := range strings.Split(normalizeSpace(clone.Text()), lineBreak) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// isHidden reports whether the element or one of its ancestors is hidden by
// the hidden attribute or an inline style.
func isHidden(sel *goquery.Selection) bool {
	return sel.Is(hiddenContent) || sel.ParentsFiltered(hiddenContent).Length() > 0
}

func breakNode() *html.Node {
	return &html.Node{Type: html.TextNode, Data: lineBreak}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
