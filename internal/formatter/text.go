// Package formatter renders fetched articles in the fixed plain-text layout
// and writes them to UTF-8 output streams.
package formatter

import (
	"fmt"
	"strings"

	"github.com/user/paywall-reader/internal/entity"
)

const (
	lineWidth = 80

	// FailedText is rendered in place of a missing article.
	FailedText = "Failed to fetch article."
)

var (
	banner  = strings.Repeat("=", lineWidth)
	divider = strings.Repeat("-", lineWidth)
)

// Format renders the article. Empty fields and their dividers are omitted.
func Format(a *entity.Article) string {
	if a == nil {
		return FailedText
	}

	lines := []string{banner}

	if a.Title != "" {
		lines = append(lines, "TITLE: "+a.Title, divider)
	}
	if a.Author != "" {
		lines = append(lines, "AUTHOR: "+a.Author)
	}
	if a.Date != "" {
		lines = append(lines, "DATE: "+a.Date)
	}
	if a.Author != "" || a.Date != "" {
		lines = append(lines, divider)
	}

	if a.Body != "" {
		lines = append(lines, "\nARTICLE CONTENT:", a.Body)
	}

	lines = append(lines, "\n"+banner, fmt.Sprintf("Fetched via method %d", a.Method))

	return strings.Join(lines, "\n")
}
