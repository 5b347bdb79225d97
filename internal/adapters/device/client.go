// Package device provides a REST client for the managed switch
package device

import (
	"bytes"
	"context"
	json "encoding/json/v2"
	"io"
	"net/http"
	"time"

	perr "cfgvault/internal/platform/errors"
	"cfgvault/internal/platform/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "cfgvault-agent"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client
type Options struct {
	// BaseURL points at the device REST root, e.g. https://10.0.0.1
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Token is an optional bearer token for the device REST API
	Token string

	// Retry config for transient server responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to the device REST API. It implements the checkpoint,
// export, CLI, shell, rate, and notification ports the trigger engine needs
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("device"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// do issues a request with auth headers and bounded retries on transient
// server errors, returning the response body
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	url := c.opts.BaseURL + path

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "device marshal request failed")
		}
		payload = b
	}

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "device new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "device do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("device transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("device http response")

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
			b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			cerr := resp.Body.Close()
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "device read body failed")
			}
			if cerr != nil {
				c.log.Error().Err(cerr).Str("path", path).Msg("device close body failed")
			}
			return b, nil
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "device transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("device transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown, "device unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
