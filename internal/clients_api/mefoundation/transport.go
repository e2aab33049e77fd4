package mefoundation

import (
	"fmt"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// Doer sends a request through one fixed proxy. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportFactory builds the Doer bound to proxyURL.
type TransportFactory func(proxyURL string) (Doer, error)

// NewTLSTransportFactory returns a factory of browser-fingerprinted clients (Chrome 120 TLS profile).
func NewTLSTransportFactory(timeout time.Duration) TransportFactory {
	seconds := int(timeout.Seconds())
	if seconds <= 0 {
		seconds = 30
	}
	return func(proxyURL string) (Doer, error) {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(seconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}
		if proxyURL != "" {
			options = append(options, tls_client.WithProxyUrl(proxyURL))
		}
		client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("error creating tls client for proxy: %w", err)
		}
		return client, nil
	}
}

// transportCache builds one Doer per proxy and reuses it so connections are kept alive.
type transportCache struct {
	factory TransportFactory
	mu      sync.Mutex
	doers   map[string]Doer
}

func newTransportCache(factory TransportFactory) *transportCache {
	return &transportCache{factory: factory, doers: make(map[string]Doer)}
}

func (t *transportCache) get(proxyURL string) (Doer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.doers[proxyURL]; ok {
		return d, nil
	}
	d, err := t.factory(proxyURL)
	if err != nil {
		return nil, err
	}
	t.doers[proxyURL] = d
	return d, nil
}
