package request

// ReadArticleRequest is the body of POST /api/read.
type ReadArticleRequest struct {
	URL string `json:"url"`
	// Method is the bypass method 1..6; zero means the default method.
	Method int  `json:"method,omitempty"`
	TryAll bool `json:"try_all,omitempty"`
}
