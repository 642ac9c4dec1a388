package telegram

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/m3rciful/taskbot/core/telegram/sender"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = time.Second
)

var errBodyNotReplayable = errors.New("telegram: request body cannot be replayed")

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// The client timeout must exceed the long poll timeout.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: time.Second,
	}
	timeout := defaultClientTimeout
	if floor := pollTimeout + 10*time.Second; timeout < floor {
		timeout = floor
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: defaultRetryAttempts,
			backoff:    defaultRetryBackoff,
		},
	}
}

// retryTransport repeats requests that failed before reaching Telegram.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = t.backoff
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(t.maxRetries)), req.Context())

	attempt := 0
	return backoff.RetryWithData(func() (*http.Response, error) {
		attempt++
		curr := req
		if attempt > 1 {
			curr = req.Clone(req.Context())
			if req.Body != nil {
				if req.GetBody == nil {
					return nil, backoff.Permanent(errBodyNotReplayable)
				}
				body, err := req.GetBody()
				if err != nil {
					return nil, backoff.Permanent(err)
				}
				curr.Body = body
			}
		}
		resp, err := base.RoundTrip(curr)
		if err != nil && !sender.Transient(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}, b)
}
