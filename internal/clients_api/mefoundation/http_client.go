package mefoundation

// Proxy-rotating HTTP client for mefoundation.com and the Magic Eden auth API.
// Every request goes through the least-loaded proxy, carries the session cookies,
// and transparently re-authenticates once when the server reports an invalid session.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"me-linker/internal/infra/log"
	"me-linker/internal/infra/proxy"
	"me-linker/internal/infra/retry"
	"me-linker/internal/wallets"
)

var (
	// ErrNoProxyAvailable is returned when the proxy list is empty.
	ErrNoProxyAvailable = proxy.ErrNoProxyAvailable
	ErrTransport        = errors.New("transport error")
	ErrParse            = errors.New("failed to parse response")
	ErrAuthFailed       = errors.New("authentication failed")
)

// invalidSessionMarker in a response body means the cookies expired.
const invalidSessionMarker = "Invalid session"

const defaultMaxResponseSize = 10 * 1024 * 1024

// Options configures a Client.
type Options struct {
	Proxies         []string
	RateLimit       float64       // requests per second across all proxies, 0 = unlimited
	Timeout         time.Duration // per request, default 30s
	MaxResponseSize int64
	// Transport overrides the tls-client factory. Used by tests.
	Transport TransportFactory
	// AuthRetry bounds EstablishSession. Zero value retries forever without delay.
	AuthRetry retry.Options
}

// Client holds the state of one logged-in identity.
type Client struct {
	pool            *proxy.Pool
	session         atomic.Pointer[Session] // replaced whole after each authentication
	nonce           string          // stable per client, sent on login
	primary         wallets.Wallet  // signs the auth challenge and is the claim wallet
	transports      *transportCache // one tls client per proxy
	limiter         *rate.Limiter
	maxResponseSize int64
	auth            *Authenticator
	refresh         singleflight.Group // coalesces concurrent re-authentication
}

// RequestOptions describes one request. Headers override the session Cookie header on conflict.
type RequestOptions struct {
	Method  string
	Headers Headers
	Body    []byte
}

// NewClient builds a client whose identity is the primary wallet.
func NewClient(primary wallets.Wallet, opts Options) (*Client, error) {
	if primary == nil {
		return nil, errors.New("primary wallet is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = defaultMaxResponseSize
	}
	factory := opts.Transport
	if factory == nil {
		factory = NewTLSTransportFactory(opts.Timeout)
	}

	c := &Client{
		pool:            proxy.NewPool(opts.Proxies),
		nonce:           uuid.NewString(),
		primary:         primary,
		transports:      newTransportCache(factory),
		maxResponseSize: opts.MaxResponseSize,
	}
	c.session.Store(NewSession())
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	c.auth = newAuthenticator(c, opts.AuthRetry)
	return c, nil
}

// Session is the cookie set requests are currently sent with.
func (c *Client) Session() *Session { return c.session.Load() }

// Nonce is the client uuid sent with the login call.
func (c *Client) Nonce() string { return c.nonce }

func (c *Client) Primary() wallets.Wallet { return c.primary }

func (c *Client) Pool() *proxy.Pool { return c.pool }

func (c *Client) Authenticator() *Authenticator { return c.auth }

// RequestText sends a request and returns the body as text.
func (c *Client) RequestText(ctx context.Context, rawURL string, opts RequestOptions) (string, error) {
	return c.do(ctx, rawURL, opts, nil, true)
}

// RequestJSON sends a request and decodes the JSON body into target.
func (c *Client) RequestJSON(ctx context.Context, rawURL string, opts RequestOptions, target any) error {
	body, err := c.do(ctx, rawURL, opts, nil, true)
	if err != nil {
		return err
	}
	return decodeJSON(body, target)
}

func decodeJSON(body string, target any) error {
	if err := json.Unmarshal([]byte(body), target); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

// do sends one request with the cookies of sess and merges the response cookies back
// into it. A nil sess means the current session.
func (c *Client) do(ctx context.Context, rawURL string, opts RequestOptions, sess *Session, allowRefresh bool) (string, error) {
	if sess == nil {
		sess = c.Session()
	}
	p, release, err := c.pool.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	doer, err := c.transports.get(p.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req, err := newRequest(ctx, rawURL, opts, sess)
	if err != nil {
		return "", err
	}

	requestID := log.GenerateRequestID()
	startTime := time.Now()
	endpoint := endpointOf(rawURL)
	log.LogRequest(requestID, req.Method, endpoint, zap.String("proxy", proxyHost(p.URL)))

	resp, err := doer.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.String("endpoint", endpoint), zap.Error(err))
		return "", fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.String("endpoint", endpoint), zap.Error(err))
		return "", fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}
	if int64(len(raw)) > c.maxResponseSize {
		return "", fmt.Errorf("%w: response exceeds %d bytes", ErrTransport, c.maxResponseSize)
	}
	log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.String("endpoint", endpoint))

	body := string(raw)
	if allowRefresh && strings.Contains(body, invalidSessionMarker) {
		log.LogWarn("Session expired, re-authenticating", zap.String("endpoint", endpoint))
		// the proxy slot is not needed while the session is rebuilt
		release()
		if err := c.refreshSession(ctx, sess); err != nil {
			return "", err
		}
		return c.do(ctx, rawURL, opts, nil, false)
	}

	if cookies := resp.Header.Values("Set-Cookie"); len(cookies) > 0 {
		sess.Merge(strings.Join(cookies, ", "))
	}
	return body, nil
}

// refreshSession replaces the expired session stale. Callers that hit the same expiry
// share one authentication, and a caller whose session was already replaced skips it.
func (c *Client) refreshSession(ctx context.Context, stale *Session) error {
	if c.Session() != stale {
		return nil
	}
	_, err, _ := c.refresh.Do("session", func() (any, error) {
		if c.Session() != stale {
			return nil, nil
		}
		return nil, c.auth.EstablishSession(ctx)
	})
	return err
}

func newRequest(ctx context.Context, rawURL string, opts RequestOptions, sess *Session) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	headers := Headers{}
	if cookie := sess.Header(); cookie != "" {
		headers = headers.With("Cookie", cookie)
	}
	for _, f := range opts.Headers {
		headers = headers.With(f.Key, f.Value)
	}

	order := make([]string, 0, len(headers))
	for _, f := range headers {
		if strings.EqualFold(f.Key, "Host") {
			req.Host = f.Value
			continue
		}
		req.Header.Set(f.Key, f.Value)
		order = append(order, strings.ToLower(f.Key))
	}
	req.Header[http.HeaderOrderKey] = order
	return req, nil
}

func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host + u.Path
}

// proxyHost strips credentials from a proxy URL before it is logged.
func proxyHost(proxyURL string) string {
	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
