// Package bypass maps bypass method identifiers to mirror URL templates.
package bypass

import "fmt"

// Method identifies one of the fixed paywall-bypass mirrors.
type Method int

const (
	RemovePaywalls Method = iota + 1
	ArchiveTodayLatest
	ArchiveFoOldest
	RemovePaywalls3
	RemovePaywalls4
	RemovePaywalls5
)

// Default is used whenever an identifier is not recognised.
const Default = RemovePaywalls

type template struct {
	prefix string
	name   string
}

var templates = map[Method]template{
	RemovePaywalls:     {prefix: "https://removepaywalls.com/", name: "removepaywalls.com"},
	ArchiveTodayLatest: {prefix: "https://archive.today/latest/", name: "archive.today"},
	ArchiveFoOldest:    {prefix: "https://archive.fo/oldest/", name: "archive.fo"},
	RemovePaywalls3:    {prefix: "https://removepaywalls.com/3/", name: "removepaywalls.com method 3"},
	RemovePaywalls4:    {prefix: "https://removepaywalls.com/4/", name: "removepaywalls.com method 4"},
	RemovePaywalls5:    {prefix: "https://removepaywalls.com/5/", name: "removepaywalls.com method 5"},
}

// All returns every method in the order the iterator tries them.
func All() []Method {
	return []Method{
		RemovePaywalls,
		ArchiveTodayLatest,
		ArchiveFoOldest,
		RemovePaywalls3,
		RemovePaywalls4,
		RemovePaywalls5,
	}
}

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	_, ok := templates[m]
	return ok
}

// Name returns the human readable mirror name, or "unknown".
func (m Method) Name() string {
	if t, ok := templates[m]; ok {
		return t.name
	}
	return "unknown"
}

// Prefix returns the URL prefix for m, falling back to the default method.
func (m Method) Prefix() string {
	if t, ok := templates[m]; ok {
		return t.prefix
	}
	return templates[Default].prefix
}

func (m Method) String() string {
	return fmt.Sprintf("%d (%s)", int(m), m.Name())
}

// BuildURL concatenates the method prefix and the article URL. No escaping is applied.
func BuildURL(articleURL string, m Method) string {
	return m.Prefix() + articleURL
}

// Parse converts an integer identifier into a Method, rejecting unknown values.
func Parse(id int) (Method, error) {
	m := Method(id)
	if !m.Valid() {
		return 0, fmt.Errorf("method must be between %d and %d, got %d", RemovePaywalls, RemovePaywalls5, id)
	}
	return m, nil
}
