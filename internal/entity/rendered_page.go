package entity

// RenderedPage is a snapshot of the DOM taken once a browser session has settled.
type RenderedPage struct {
	RequestedURL string
	FinalURL     string
	HTML         string
	// VisibleText is document.body.innerText as rendered by the browser.
	VisibleText string
}
