package entity

import (
	"time"
	"unicode/utf8"
)

// MinBodyRunes is the body length above which an untitled result still counts as a successful read.
const MinBodyRunes = 500

// Article is the result of one fetch attempt through a bypass method.
// Fields that no selector rule matched stay empty.
type Article struct {
	SourceURL string    `json:"source_url"`
	Method    int       `json:"method"`
	BypassURL string    `json:"bypass_url"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Date      string    `json:"date"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Succeeded reports whether the attempt produced usable content.
func (a *Article) Succeeded() bool {
	if a == nil {
		return false
	}
	return a.Title != "" || utf8.RuneCountInString(a.Body) > MinBodyRunes
}
