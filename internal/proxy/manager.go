package proxy

import (
	"math/rand"
	"sync"
	"time"
)

// Manager handles the rotation of proxies and user agents across browser sessions.
type Manager struct {
	proxies    []string
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
	rnd        *rand.Rand
}

// NewManager creates a manager. With no user agents configured, fallbackUserAgent is always used.
func NewManager(proxies, userAgents []string, fallbackUserAgent string) *Manager {
	agents := make([]string, 0, len(userAgents))
	for _, ua := range userAgents {
		if ua != "" {
			agents = append(agents, ua)
		}
	}
	if len(agents) == 0 && fallbackUserAgent != "" {
		agents = append(agents, fallbackUserAgent)
	}
	return &Manager{
		proxies:    append([]string(nil), proxies...),
		userAgents: agents,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetProxy returns a proxy URL from the list, rotating sequentially.
func (m *Manager) GetProxy() string {
	if len(m.proxies) == 0 {
		return "" // No proxy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	if len(m.userAgents) == 0 {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgents[m.rnd.Intn(len(m.userAgents))]
}
