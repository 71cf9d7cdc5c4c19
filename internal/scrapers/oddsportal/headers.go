package oddsportal

import (
	"math/rand/v2"
	"sync"

	browser "github.com/EDDYCJY/fake-useragent"
)

var fallbackUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// fingerprintHeaders are sent with every request, together with a user agent
// they look like a top level navigation of a desktop browser.
var fingerprintHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
	"Accept-Encoding":           "gzip",
	"Cache-Control":             "max-age=0",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
}

// UserAgentSource returns a user agent string, an empty string means the
// source had nothing to offer.
type UserAgentSource func() string

var fakeUserAgentFamilies = []func() string{
	browser.Chrome,
	browser.Firefox,
	browser.Safari,
	browser.Computer,
}

var fakeUserAgentMutex sync.Mutex

// FakeUserAgent picks a random desktop browser family and asks
// fake-useragent for one of its user agents.
func FakeUserAgent() (ua string) {
	fakeUserAgentMutex.Lock()
	defer fakeUserAgentMutex.Unlock()
	defer func() {
		// fake-useragent loads its data lazily, a failure there must not take the run down
		if recover() != nil {
			ua = ""
		}
	}()
	family := fakeUserAgentFamilies[rand.IntN(len(fakeUserAgentFamilies))]
	return family()
}

// StaticUserAgents picks uniformly from a fixed list.
func StaticUserAgents(list []string) UserAgentSource {
	return func() string {
		if len(list) == 0 {
			return ""
		}
		return list[rand.IntN(len(list))]
	}
}

// HeaderSelector builds the header bundle of a single request.
type HeaderSelector struct {
	userAgents UserAgentSource
}

// NewHeaderSelector uses FakeUserAgent if source is nil.
func NewHeaderSelector(source UserAgentSource) HeaderSelector {
	if source == nil {
		source = FakeUserAgent
	}
	return HeaderSelector{userAgents: source}
}

// Bundle returns the headers of one request, `userAgent` pins the user agent
// (ex. the one a restored session was issued to), if empty a random one is
// chosen.
func (h HeaderSelector) Bundle(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = h.userAgents()
	}
	if userAgent == "" {
		userAgent = StaticUserAgents(fallbackUserAgents)()
	}

	out := make(map[string]string, len(fingerprintHeaders)+1)
	for k, v := range fingerprintHeaders {
		out[k] = v
	}
	out["User-Agent"] = userAgent
	return out
}
