package oddsportal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	utls "github.com/refraction-networking/utls"
)

// Impersonation selects how the client's TLS layer presents itself.
type Impersonation string

const (
	// IMPERSONATE_CLOUDFLARE uses cloudflare-bp-go's browser-like cipher suites.
	IMPERSONATE_CLOUDFLARE Impersonation = "cloudflare"
	// IMPERSONATE_UTLS performs the handshake with a Chrome ClientHello.
	IMPERSONATE_UTLS Impersonation = "utls"
	// IMPERSONATE_NONE uses the standard library's TLS stack untouched.
	IMPERSONATE_NONE Impersonation = "none"
)

// ProxyConfig routes traffic through an http or https proxy, if enabled at
// least one of the two urls must be set.
type ProxyConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	HTTP    string `json:"http" yaml:"http"`
	HTTPS   string `json:"https" yaml:"https"`
}

func parseProxyUrl(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse proxy url: %q is missing a scheme or host", raw)
	}
	return parsed, nil
}

// proxyFunc returns nil if the proxy is disabled.
func (p ProxyConfig) proxyFunc() (func(*http.Request) (*url.URL, error), error) {
	if !p.Enabled {
		return nil, nil
	}
	httpProxy, err := parseProxyUrl(p.HTTP)
	if err != nil {
		return nil, err
	}
	httpsProxy, err := parseProxyUrl(p.HTTPS)
	if err != nil {
		return nil, err
	}
	if httpProxy == nil && httpsProxy == nil {
		return nil, errors.New("proxy is enabled but neither an http nor an https proxy is set")
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != nil {
			return httpsProxy, nil
		}
		if httpProxy != nil {
			return httpProxy, nil
		}
		return httpsProxy, nil
	}, nil
}

// chromeH1Spec returns a Chrome ClientHello with ALPN locked to http/1.1,
// net/http can't speak h2 over a connection it did not negotiate itself.
func chromeH1Spec() (utls.ClientHelloSpec, error) {
	spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
	if err != nil {
		return utls.ClientHelloSpec{}, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
	return spec, nil
}

func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 15 * time.Second}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		rawConn.Close()
		return nil, err
	}
	spec, err := chromeH1Spec()
	if err != nil {
		rawConn.Close()
		return nil, err
	}

	tlsConn := utls.UClient(rawConn, &utls.Config{ServerName: host}, utls.HelloCustom)
	err = tlsConn.ApplyPreset(&spec)
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("apply chrome preset: %w", err)
	}
	err = tlsConn.HandshakeContext(ctx)
	if err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// newTransport builds the round tripper of the given impersonation mode.
//
// note: proxied https connections are tunneled by net/http itself, so the utls
// handshake only applies to direct connections.
func newTransport(mode Impersonation, proxy ProxyConfig) (http.RoundTripper, error) {
	proxyFn, err := proxy.proxyFunc()
	if err != nil {
		return nil, err
	}

	base := &http.Transport{
		Proxy:                 proxyFn,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	switch mode {
	case IMPERSONATE_CLOUDFLARE, "":
		return cloudflarebp.AddCloudFlareByPass(base), nil
	case IMPERSONATE_UTLS:
		base.DialTLSContext = dialTLSChrome
		return base, nil
	case IMPERSONATE_NONE:
		return base, nil
	default:
		return nil, fmt.Errorf("unknown impersonation mode %q", mode)
	}
}
