package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Larcf/footstats-data/internal/components/chrono"
	"github.com/Larcf/footstats-data/internal/notify"
	"github.com/Larcf/footstats-data/internal/results"
	"github.com/Larcf/footstats-data/internal/scrapers/oddsportal"
	"github.com/Larcf/footstats-data/internal/session"
	"github.com/Larcf/footstats-data/lib/configutil"
	"github.com/Larcf/footstats-data/lib/sqliteutil"

	"dario.cat/mergo"
)

type RetryConfig struct {
	MaxAttempts     int     `json:"max_attempts" yaml:"max_attempts"`
	InitialSeconds  float64 `json:"initial_seconds" yaml:"initial_seconds"`
	MaxSeconds      float64 `json:"max_seconds" yaml:"max_seconds"`
	BackoffMultiple float64 `json:"backoff_multiple" yaml:"backoff_multiple"`
}

type PacingConfig struct {
	MinIntervalMs int `json:"min_interval_ms" yaml:"min_interval_ms"`
	JitterMs      int `json:"jitter_ms" yaml:"jitter_ms"`
}

const (
	SESSION_FILE   = "file"
	SESSION_SQLITE = "sqlite"
	SESSION_MEMORY = "memory"
	SESSION_NONE   = "none"
)

type SessionConfig struct {
	// Backend is one of file, sqlite, memory or none.
	Backend    string `json:"backend" yaml:"backend"`
	Path       string `json:"path" yaml:"path"`
	TtlMinutes int    `json:"ttl_minutes" yaml:"ttl_minutes"`
}

type ArchiveConfig struct {
	// Path is a sqlite file or a libsql url, the archive is disabled if empty.
	Path string `json:"path" yaml:"path"`
}

type Config struct {
	Url            string            `json:"url" yaml:"url"`
	Output         string            `json:"output" yaml:"output"`
	Timezone       string            `json:"timezone" yaml:"timezone"`
	Impersonation  string            `json:"impersonation" yaml:"impersonation"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	BlockPhrases   []string          `json:"block_phrases" yaml:"block_phrases"`
	// UserAgents replaces the fake-useragent database if set.
	UserAgents     []string          `json:"user_agents" yaml:"user_agents"`
	Retry          RetryConfig       `json:"retry" yaml:"retry"`
	Pacing         PacingConfig      `json:"pacing" yaml:"pacing"`
	Session        SessionConfig     `json:"session" yaml:"session"`
	Archive        ArchiveConfig     `json:"archive" yaml:"archive"`
	Smtp           notify.SmtpConfig `json:"smtp" yaml:"smtp"`
}

func defaultConfig() Config {
	return Config{
		Url:            oddsportal.DefaultResultsUrl,
		Output:         results.DefaultPath,
		Timezone:       chrono.DefaultLocation,
		Impersonation:  string(oddsportal.IMPERSONATE_CLOUDFLARE),
		TimeoutSeconds: 30,
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialSeconds:  4,
			MaxSeconds:      10,
			BackoffMultiple: 2,
		},
		Pacing: PacingConfig{
			MinIntervalMs: 500,
			JitterMs:      2000,
		},
		Session: SessionConfig{
			Backend: SESSION_FILE,
			Path:    ".vsresults/session.json",
		},
	}
}

// loadConfig reads the config file at path, a missing file leaves every
// setting at its default.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg.withDefaults()
}

// withDefaults fills every unset key with its default. Pacing can't be
// turned off with a zero since zero means unset, negative values disable it.
func (c Config) withDefaults() (Config, error) {
	out := defaultConfig()
	err := mergo.Merge(&out, c, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}
	out.Pacing.MinIntervalMs = max(out.Pacing.MinIntervalMs, 0)
	out.Pacing.JitterMs = max(out.Pacing.JitterMs, 0)
	if out.Session.Backend == SESSION_SQLITE && c.Session.Path == "" {
		out.Session.Path = ".vsresults/state.db"
	}
	return out, nil
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func (c Config) clientOptions(proxy oddsportal.ProxyConfig, store session.Store) oddsportal.ClientOptions {
	opts := oddsportal.DefaultClientOptions()
	opts.Url = c.Url
	opts.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	opts.Impersonation = oddsportal.Impersonation(c.Impersonation)
	opts.Proxy = proxy
	opts.Retry = oddsportal.RetryPolicy{
		MaxAttempts:     c.Retry.MaxAttempts,
		InitialInterval: seconds(c.Retry.InitialSeconds),
		MaxInterval:     seconds(c.Retry.MaxSeconds),
		Multiplier:      c.Retry.BackoffMultiple,
	}
	opts.Pacing = oddsportal.PacingPolicy{
		MinInterval: time.Duration(c.Pacing.MinIntervalMs) * time.Millisecond,
		Jitter:      time.Duration(c.Pacing.JitterMs) * time.Millisecond,
	}
	if len(c.BlockPhrases) > 0 {
		opts.BlockPhrases = c.BlockPhrases
	}
	if len(c.UserAgents) > 0 {
		opts.UserAgents = oddsportal.StaticUserAgents(c.UserAgents)
	}
	opts.Sessions = store
	return opts
}

// openSessionStore returns a nil store for the none backend, the returned
// close function is always safe to call.
func (c Config) openSessionStore() (session.Store, func() error, error) {
	noop := func() error { return nil }
	ttl := time.Duration(c.Session.TtlMinutes) * time.Minute

	switch c.Session.Backend {
	case SESSION_FILE:
		return session.NewFileStore(c.Session.Path), noop, nil
	case SESSION_SQLITE:
		db, err := sqliteutil.OpenDB(session.Schema, c.Session.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open session db: %w", err)
		}
		return session.NewSQLStore(db, c.Url), db.Close, nil
	case SESSION_MEMORY:
		return session.NewMemoryStore(ttl), noop, nil
	case SESSION_NONE:
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
}

func (c Config) openArchive() (results.Archive, func() error, error) {
	db, err := sqliteutil.OpenDB(results.ArchiveSchema, c.Archive.Path)
	if err != nil {
		return results.Archive{}, nil, fmt.Errorf("open archive: %w", err)
	}
	return results.NewArchive(db), db.Close, nil
}

// proxyFromEnv reads PROXY_ENABLED, PROXY_HTTP and PROXY_HTTPS, the caller
// is expected to have loaded .env beforehand.
func proxyFromEnv(getenv func(string) string) (oddsportal.ProxyConfig, error) {
	proxy := oddsportal.ProxyConfig{
		HTTP:  strings.TrimSpace(getenv("PROXY_HTTP")),
		HTTPS: strings.TrimSpace(getenv("PROXY_HTTPS")),
	}
	enabled := strings.TrimSpace(getenv("PROXY_ENABLED"))
	if enabled == "" {
		return proxy, nil
	}
	parsed, err := strconv.ParseBool(enabled)
	if err != nil {
		return oddsportal.ProxyConfig{}, fmt.Errorf("parse PROXY_ENABLED: %w", err)
	}
	proxy.Enabled = parsed
	return proxy, nil
}

func (c Config) clock() (chrono.API, error) {
	clock, err := chrono.NewStandardImpl(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return clock, nil
}

func clearSession(ctx context.Context, store session.Store) error {
	if store == nil {
		return nil
	}
	return store.Clear(ctx)
}
