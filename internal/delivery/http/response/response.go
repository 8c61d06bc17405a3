package response

import "time"

// ArticleResponse is a DTO for a fetched article, mirroring entity.Article.
type ArticleResponse struct {
	SourceURL  string    `json:"source_url"`
	Method     int       `json:"method"`
	MethodName string    `json:"method_name"`
	BypassURL  string    `json:"bypass_url"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Date       string    `json:"date"`
	Body       string    `json:"body"`
	Succeeded  bool      `json:"succeeded"`
	FetchedAt  time.Time `json:"fetched_at"`
}

type MethodResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
