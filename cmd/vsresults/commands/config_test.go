package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Larcf/footstats-data/internal/scrapers/oddsportal"
	"github.com/Larcf/footstats-data/internal/session"

	"github.com/stretchr/testify/require"
)

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
	require.Equal(t, "live-matches.json", cfg.Output)
	require.Equal(t, "America/Sao_Paulo", cfg.Timezone)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	writeFile(t, path, `{
		// comments and trailing commas are fine
		output: "a.json",
		impersonation: "utls",
		pacing: { min_interval_ms: -1 },
		retry: { max_attempts: 5 },
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ output: "b.json" }`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "b.json", cfg.Output)
	require.Equal(t, "utls", cfg.Impersonation)
	require.Equal(t, oddsportal.DefaultResultsUrl, cfg.Url)
	require.Equal(t, 0, cfg.Pacing.MinIntervalMs)
	require.Equal(t, 2000, cfg.Pacing.JitterMs)
	require.Equal(t, RetryConfig{MaxAttempts: 5, InitialSeconds: 4, MaxSeconds: 10, BackoffMultiple: 2}, cfg.Retry)

	opts := cfg.clientOptions(oddsportal.ProxyConfig{}, nil)
	require.Equal(t, oddsportal.IMPERSONATE_UTLS, opts.Impersonation)
	require.Equal(t, 30*time.Second, opts.Timeout)
	require.Equal(t, 4*time.Second, opts.Retry.InitialInterval)
	require.Equal(t, time.Duration(0), opts.Pacing.MinInterval)
	require.Equal(t, 2*time.Second, opts.Pacing.Jitter)
}

func TestLoadConfigYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "session:\n  backend: sqlite\nuser_agents:\n  - agent-a\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, SESSION_SQLITE, cfg.Session.Backend)
	require.Equal(t, ".vsresults/state.db", cfg.Session.Path)
	require.Equal(t, []string{"agent-a"}, cfg.UserAgents)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{ output: `)
	_, err := loadConfig(path)
	require.Error(t, err)
}

func TestProxyFromEnv(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(key string) string {
			return values[key]
		}
	}

	proxy, err := proxyFromEnv(env(nil))
	require.NoError(t, err)
	require.Equal(t, oddsportal.ProxyConfig{}, proxy)

	proxy, err = proxyFromEnv(env(map[string]string{
		"PROXY_ENABLED": "true",
		"PROXY_HTTP":    "http://proxy:8080",
		"PROXY_HTTPS":   " http://proxy:8443 ",
	}))
	require.NoError(t, err)
	require.Equal(t, oddsportal.ProxyConfig{
		Enabled: true,
		HTTP:    "http://proxy:8080",
		HTTPS:   "http://proxy:8443",
	}, proxy)

	_, err = proxyFromEnv(env(map[string]string{"PROXY_ENABLED": "maybe"}))
	require.Error(t, err)
}

func TestOpenSessionStore(t *testing.T) {
	dir := t.TempDir()

	table := []struct {
		backend  string
		path     string
		expected any
	}{
		{backend: SESSION_FILE, path: filepath.Join(dir, "session.json"), expected: session.FileStore{}},
		{backend: SESSION_SQLITE, path: filepath.Join(dir, "state.db"), expected: session.SQLStore{}},
		{backend: SESSION_MEMORY, expected: session.MemoryStore{}},
	}
	for _, row := range table {
		cfg := defaultConfig()
		cfg.Session = SessionConfig{Backend: row.backend, Path: row.path}
		store, closeStore, err := cfg.openSessionStore()
		require.NoError(t, err, row.backend)
		require.IsType(t, row.expected, store)
		require.NoError(t, closeStore())
	}

	cfg := defaultConfig()
	cfg.Session.Backend = SESSION_NONE
	store, _, err := cfg.openSessionStore()
	require.NoError(t, err)
	require.Nil(t, store)

	cfg.Session.Backend = "redis"
	_, _, err = cfg.openSessionStore()
	require.Error(t, err)
}
