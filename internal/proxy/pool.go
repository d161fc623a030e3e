package proxy

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// ProxyPool rotates page fetches over a list of proxies, skipping the ones
// that failed recently. It is the only mutable state shared between
// concurrent extractions and is guarded by its own mutex.
type ProxyPool struct {
	proxies  []string
	index    int
	mu       sync.Mutex
	failed   map[string]time.Time
	cooldown time.Duration
}

// NewProxyPool creates a new ProxyPool. It returns nil for an empty list so
// callers can pass the result straight to the fetcher.
func NewProxyPool(proxies []string) *ProxyPool {
	if len(proxies) == 0 {
		return nil
	}
	return &ProxyPool{
		proxies:  proxies,
		failed:   make(map[string]time.Time),
		cooldown: DefaultCooldown,
	}
}

// Size returns the number of configured proxies
func (p *ProxyPool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// GetNext returns the next healthy proxy from the pool
func (p *ProxyPool) GetNext() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	// Try to find a healthy proxy
	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		// Check if failed recently
		if failTime, ok := p.failed[proxy]; ok {
			if time.Since(failTime) < p.cooldown {
				// Still considered failed, try next
				if p.index == start {
					// Every proxy failed recently, use this one anyway
					return proxy
				}
				continue
			}
			// Failure expired
			delete(p.failed, proxy)
		}

		return proxy
	}
}

// MarkFailed marks a proxy as failed so it will be skipped for a while
func (p *ProxyPool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears the failure status of a proxy
func (p *ProxyPool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// IsFailed reports whether proxy is currently cooling down
func (p *ProxyPool) IsFailed(proxy string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	failTime, ok := p.failed[proxy]
	return ok && time.Since(failTime) < p.cooldown
}
