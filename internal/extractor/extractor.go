// Package extractor pulls article fields out of a rendered page using ordered
// selector rules. The first rule that yields non-empty text wins.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/paywall-reader/internal/entity"
)

const (
	paragraphTag      = "p"
	paragraphSep      = "\n\n"
	datetimeAttr      = "datetime"
)

// Fields are the values extracted from one page. Unmatched fields are empty.
type Fields struct {
	Title  string
	Author string
	Date   string
	Body   string
}

// Extractor applies Rules to rendered pages.
type Extractor struct {
	rules Rules
}

// New creates an extractor. Empty rule lists are replaced with the defaults.
func New(rules Rules) *Extractor {
	return &Extractor{rules: rules.WithDefaults()}
}

// Rules returns the rules in effect.
func (e *Extractor) Rules() Rules {
	return e.rules
}

// Extract parses the page HTML and extracts every field.
func (e *Extractor) Extract(page *entity.RenderedPage) (Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return Fields{}, fmt.Errorf("failed to parse rendered page: %w", err)
	}

	var f Fields
	f.Title, _ = firstMatch(doc, e.rules.Title, lookupText)
	f.Author, _ = firstMatch(doc, e.rules.Author, lookupText)
	f.Date, _ = firstMatch(doc, e.rules.Date, lookupDate)

	body, ok := firstMatch(doc, e.rules.Body, lookupParagraphs)
	if !ok {
		body = visibleText(page, doc)
	}
	f.Body = body

	return f, nil
}

// lookupFunc resolves one selector rule. ok is false when the element is
// absent or yields no text; neither case is an error.
type lookupFunc func(doc *goquery.Document, selector string) (text string, ok bool)

func firstMatch(doc *goquery.Document, selectors []string, lookup lookupFunc) (string, bool) {
	for _, selector := range selectors {
		if text, ok := lookup(doc, selector); ok {
			return text, true
		}
	}
	return "", false
}

func lookupText(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := displayText(sel)
	return text, text != ""
}

// lookupDate prefers the machine readable datetime attribute over the visible
// text. The attribute is read even when the element is hidden.
func lookupDate(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	if attr, exists := sel.Attr(datetimeAttr); exists {
		if attr = strings.TrimSpace(attr); attr != "" {
			return attr, true
		}
	}
	text := displayText(sel)
	return text, text != ""
}

// lookupParagraphs joins the non-empty paragraphs of the matched container.
// A container without any non-empty paragraph does not match.
func lookupParagraphs(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	var paragraphs []string
	sel.Find(paragraphTag).Each(func(i int, p *goquery.Selection) {
		if text := displayText(p); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return "", false
	}
	return strings.Join(paragraphs, paragraphSep), true
}

// visibleText returns the text the browser rendered for the whole page. When the
// snapshot carries none, the body's display text is derived from the DOM.
func visibleText(page *entity.RenderedPage, doc *goquery.Document) string {
	if text := strings.TrimSpace(page.VisibleText); text != "" {
		return text
	}
	return displayText(doc.Find("body"))
}
