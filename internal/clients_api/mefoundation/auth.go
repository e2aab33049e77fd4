package mefoundation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"me-linker/internal/infra/log"
	"me-linker/internal/infra/retry"
)

// SessionCookie must be present after a successful login.
const SessionCookie = "session_signature"

// Authenticator turns the primary wallet signature into a session cookie.
type Authenticator struct {
	client  *Client
	policy  retry.Options
	breaker *gobreaker.CircuitBreaker // guards the verify endpoint
}

func newAuthenticator(c *Client, policy retry.Options) *Authenticator {
	if policy.Retryable == nil {
		// an empty proxy list never heals, even under an unlimited policy
		policy.Retryable = func(err error) bool {
			return !errors.Is(err, ErrNoProxyAvailable) && retry.IsRetryable(err)
		}
	}
	return &Authenticator{
		client: c,
		policy: policy,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "VerifySession",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.LogWarn("Circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

// EstablishSession signs a fresh challenge, verifies it and logs in.
// It repeats the whole flow until the session cookie is present, the retry
// policy gives up or ctx is done. The client's session is replaced only on success.
func (a *Authenticator) EstablishSession(ctx context.Context) error {
	address, err := a.client.primary.Address()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	err = retry.Do(ctx, a.policy, func(attempt int) error {
		// filled aside and swapped in whole on success
		next := NewSession()

		// the first login hands out the pre-auth cookies
		if _, err := a.client.login(ctx, next); err != nil {
			log.LogWarn("Login before verify failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}

		res, err := a.breaker.Execute(func() (interface{}, error) {
			verify, err := a.client.verifyAndCreate(ctx, next)
			if err != nil {
				return nil, err
			}
			return verify, nil
		})
		if err != nil {
			log.LogWarn("Verify session failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		verified := res.(VerifyResult).Success

		if _, err := a.client.login(ctx, next); err != nil {
			log.LogWarn("Login after verify failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}

		if !verified || !next.Has(SessionCookie) {
			log.LogWarn("Session not established",
				zap.Int("attempt", attempt),
				zap.Bool("verified", verified),
				zap.Strings("cookies", next.Keys()))
			return fmt.Errorf("%w: verified=%t, session cookie present=%t",
				ErrAuthFailed, verified, next.Has(SessionCookie))
		}
		a.client.session.Store(next)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAuthFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	log.LogSuccess("Logged in to mefoundation", zap.String("wallet", address))
	return nil
}

// BreakerState reports the verify circuit breaker state.
func (a *Authenticator) BreakerState() gobreaker.State {
	return a.breaker.State()
}
