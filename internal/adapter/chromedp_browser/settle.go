package chromedp_browser

const settleProbeScript = `({
	readyState: document.readyState,
	textLength: document.body ? document.body.innerText.length : 0
})`

type pageState struct {
	ReadyState string `json:"readyState"`
	TextLength int    `json:"textLength"`
}

// settleTracker decides when page scripts have plausibly finished: the
// document is complete and its rendered text length held steady across two
// consecutive probes.
type settleTracker struct {
	lastLength int
	primed     bool
}

func (t *settleTracker) observe(s pageState) bool {
	if s.ReadyState != "complete" {
		t.primed = false
		return false
	}
	if t.primed && t.lastLength == s.TextLength {
		return true
	}
	t.lastLength = s.TextLength
	t.primed = true
	return false
}
