// Package proxy keeps the pool of outbound proxies and hands out the least loaded one.
package proxy

import (
	"errors"
	"sync"
)

// ErrNoProxyAvailable is returned when the pool is empty.
var ErrNoProxyAvailable = errors.New("no available proxies")

// Proxy is a pool entry. Its in-flight request count is kept by the pool.
type Proxy struct {
	URL            string
	activeRequests int
}

// Pool selects proxies by load. The zero value is an empty pool.
type Pool struct {
	mu      sync.Mutex
	proxies []*Proxy
}

// NewPool keeps the given order; it is the tie-breaker for selection.
func NewPool(urls []string) *Pool {
	p := &Pool{proxies: make([]*Proxy, 0, len(urls))}
	for _, u := range urls {
		p.proxies = append(p.proxies, &Proxy{URL: u})
	}
	return p
}

// Len returns the pool size.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Select returns the proxy with the fewest active requests without reserving it.
// Ties go to the entry that comes first in the pool.
func (p *Pool) Select() (*Proxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leastLoaded()
}

func (p *Pool) leastLoaded() (*Proxy, error) {
	if len(p.proxies) == 0 {
		return nil, ErrNoProxyAvailable
	}
	best := p.proxies[0]
	for _, px := range p.proxies[1:] {
		if px.activeRequests < best.activeRequests {
			best = px
		}
	}
	return best, nil
}

// Acquire selects the least loaded proxy and counts a request against it.
// The returned release must be called when the request is over; extra calls are no-ops.
func (p *Pool) Acquire() (*Proxy, func(), error) {
	p.mu.Lock()
	px, err := p.leastLoaded()
	if err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	px.activeRequests++
	p.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			p.mu.Lock()
			px.activeRequests--
			p.mu.Unlock()
		})
	}
	return px, release, nil
}

// ActiveRequests reports the in-flight count for the proxy with the given URL.
func (p *Pool) ActiveRequests(url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, px := range p.proxies {
		if px.URL == url {
			return px.activeRequests
		}
	}
	return 0
}

// Snapshot returns url -> active requests for every entry.
func (p *Pool) Snapshot() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int, len(p.proxies))
	for _, px := range p.proxies {
		out[px.URL] += px.activeRequests
	}
	return out
}
