package oddsportal

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http/cookiejar"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/Larcf/footstats-data/internal/components/assert"
	"github.com/Larcf/footstats-data/internal/components/chrono"
	"github.com/Larcf/footstats-data/internal/components/telemetry"
	"github.com/Larcf/footstats-data/internal/session"
	"github.com/Larcf/footstats-data/lib/restyutil"
	libtelemetry "github.com/Larcf/footstats-data/lib/telemetry"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = libtelemetry.Tracer("scrapers/oddsportal")

const (
	report_client_fetch           = "client.fetch"
	report_client_restore_session = "client.restore-session"
	report_client_save_session    = "client.save-session"
	report_client_clear_session   = "client.clear-session"
)

const DefaultResultsUrl = "https://www.oddsportal.com/virtual-soccer/results/"

type RetryPolicy struct {
	// MaxAttempts counts the first attempt, 1 disables retries.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 4 * time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0
	// the attempt ceiling bounds the run, not the elapsed time
	exp.MaxElapsedTime = 0
	exp.Reset()

	attempts := max(p.MaxAttempts, 1)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// PacingPolicy spaces out requests made by the same client, every request
// after the first waits at least MinInterval plus a uniform random delay in
// [0, Jitter).
type PacingPolicy struct {
	MinInterval time.Duration
	Jitter      time.Duration
}

func DefaultPacingPolicy() PacingPolicy {
	return PacingPolicy{
		MinInterval: 500 * time.Millisecond,
		Jitter:      2 * time.Second,
	}
}

type ClientOptions struct {
	Url           string
	Timeout       time.Duration
	Impersonation Impersonation
	Proxy         ProxyConfig
	Retry         RetryPolicy
	Pacing        PacingPolicy
	BlockPhrases  []string
	// UserAgents defaults to FakeUserAgent.
	UserAgents UserAgentSource
	// Sessions can be nil, sessions are then neither restored nor saved.
	Sessions session.Store
	// DumpOutput receives every http exchange if set.
	DumpOutput restyutil.InstrumentOutput
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Url:           DefaultResultsUrl,
		Timeout:       30 * time.Second,
		Impersonation: IMPERSONATE_CLOUDFLARE,
		Retry:         DefaultRetryPolicy(),
		Pacing:        DefaultPacingPolicy(),
		BlockPhrases:  DefaultBlockPhrases,
	}
}

// Client fetches the results page, it is not safe for concurrent use.
type Client struct {
	url      *url.URL
	http     *resty.Client
	jar      *cookiejar.Jar
	headers  HeaderSelector
	retry    RetryPolicy
	blocks   []string
	sessions session.Store

	limiter  *rate.Limiter
	jitter   time.Duration
	requests *atomic.Int64

	time chrono.API
	tel  telemetry.API
}

func NewClient(opts ClientOptions, clock chrono.API, tel telemetry.API) (*Client, error) {
	assert.NotNil(clock)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("oddsportal", tel)

	parsedUrl, err := url.Parse(opts.Url)
	if err != nil {
		return nil, fmt.Errorf("parse target url: %w", err)
	}
	if parsedUrl.Scheme == "" || parsedUrl.Host == "" {
		return nil, fmt.Errorf("target url %q must be absolute", opts.Url)
	}

	transport, err := newTransport(opts.Impersonation, opts.Proxy)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetTransport(transport)
	httpClient.SetCookieJar(jar)
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	blocks := opts.BlockPhrases
	if blocks == nil {
		blocks = DefaultBlockPhrases
	}

	c := &Client{
		url:      parsedUrl,
		http:     httpClient,
		jar:      jar,
		headers:  NewHeaderSelector(opts.UserAgents),
		retry:    opts.Retry,
		blocks:   blocks,
		sessions: opts.Sessions,
		jitter:   opts.Pacing.Jitter,
		requests: &atomic.Int64{},
		time:     clock,
		tel:      tel,
	}

	limit := rate.Inf
	if opts.Pacing.MinInterval > 0 {
		limit = rate.Every(opts.Pacing.MinInterval)
	}
	// burst of 1 means consecutive requests are always at least MinInterval apart
	c.limiter = rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(c.pace)

	restyutil.InstrumentClient(httpClient, tracer, opts.DumpOutput)
	telemetry.InstrumentResty(httpClient, tel)

	return c, nil
}

func (c *Client) pace(_ *resty.Client, req *resty.Request) error {
	ctx := req.Context()
	err := c.limiter.Wait(ctx)
	if err != nil {
		return err
	}
	if c.requests.Add(1) == 1 || c.jitter <= 0 {
		return nil
	}

	timer := time.NewTimer(rand.N(c.jitter))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// restoreSession seeds the cookie jar with the persisted session, it returns
// the user agent the session was issued to (empty if there was none).
func (c *Client) restoreSession(ctx context.Context) string {
	if c.sessions == nil {
		return ""
	}
	state, ok, err := c.sessions.Load(ctx)
	if err != nil {
		c.tel.ReportWarning(report_client_restore_session, err)
		c.InvalidateSession(ctx)
		return ""
	}
	if !ok || state.Empty() {
		return ""
	}
	c.jar.SetCookies(c.url, state.HttpCookies())
	c.tel.ReportDebug(report_client_restore_session, "cookies", len(state.Cookies), "saved_at", state.SavedAt)
	return state.UserAgent
}

func (c *Client) saveSession(ctx context.Context, userAgent string) {
	if c.sessions == nil {
		return
	}
	state := session.State{
		UserAgent: userAgent,
		Cookies:   session.CookiesFromHttp(c.jar.Cookies(c.url)),
		SavedAt:   c.time.Now(),
	}
	err := c.sessions.Save(ctx, state)
	if err != nil {
		c.tel.ReportWarning(report_client_save_session, err)
	}
}

// InvalidateSession drops the persisted session so the next run starts cold,
// callers use it when a response that was fetched fine turns out to be
// unusable.
func (c *Client) InvalidateSession(ctx context.Context) {
	if c.sessions == nil {
		return
	}
	err := c.sessions.Clear(ctx)
	if err != nil {
		c.tel.ReportWarning(report_client_clear_session, err)
	}
}

// Fetch returns the body of the results page. Failures are either a
// *FetchError (attempts exhausted) or a *BlockedError, in both cases the
// persisted session is dropped.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()

	userAgent := c.restoreSession(ctx)

	attempts := 0
	var body string
	var usedAgent string
	operation := func() error {
		attempts++
		headers := c.headers.Bundle(userAgent)

		res, err := c.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			Get(c.url.String())
		if err != nil {
			return &FetchError{URL: c.url.String(), Attempts: attempts, Err: err}
		}

		text := res.String()
		phrase, blocked := DetectBlock(text, c.blocks)
		if blocked {
			return backoff.Permanent(&BlockedError{
				URL:        c.url.String(),
				StatusCode: res.StatusCode(),
				Phrase:     phrase,
			})
		}
		if !res.IsSuccess() {
			return &FetchError{
				URL:        c.url.String(),
				StatusCode: res.StatusCode(),
				Attempts:   attempts,
				Err:        errors.New(res.Status()),
			}
		}

		body = text
		usedAgent = headers["User-Agent"]
		return nil
	}

	err := backoff.RetryNotify(operation, c.retry.backOff(ctx), func(err error, wait time.Duration) {
		c.tel.ReportWarning(report_client_fetch, err, "retry_in", wait.String())
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		var fetchErr *FetchError
		var blockedErr *BlockedError
		if !errors.As(err, &fetchErr) && !errors.As(err, &blockedErr) {
			// context cancellation surfaces as a bare error from the backoff
			err = &FetchError{URL: c.url.String(), Attempts: attempts, Err: err}
		} else if fetchErr != nil {
			fetchErr.Attempts = attempts
		}

		c.InvalidateSession(ctx)
		c.tel.ReportBroken(report_client_fetch, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	c.saveSession(ctx, usedAgent)
	return body, nil
}
