// Package session persists the HTTP client state (cookies and the user agent
// they were issued to) between runs so a new run can skip solving the
// anti-bot challenge again.
package session

import (
	"context"
	"net/http"
	"time"
)

type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type State struct {
	UserAgent string    `json:"user_agent"`
	Cookies   []Cookie  `json:"cookies"`
	SavedAt   time.Time `json:"saved_at"`
}

// Empty is true if the state carries nothing worth restoring.
func (s State) Empty() bool {
	return s.UserAgent == "" && len(s.Cookies) == 0
}

// HttpCookies converts the saved cookies for use with a cookie jar.
func (s State) HttpCookies() []*http.Cookie {
	out := make([]*http.Cookie, len(s.Cookies))
	for i, c := range s.Cookies {
		out[i] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return out
}

func CookiesFromHttp(cookies []*http.Cookie) []Cookie {
	out := make([]Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = Cookie{Name: c.Name, Value: c.Value}
	}
	return out
}

// Store is owned by the fetcher, nothing else should read or write it.
//
// note: fault injection point
type Store interface {
	// Load returns the saved state, ok is false if nothing has been saved.
	Load(ctx context.Context) (state State, ok bool, err error)
	// Save overwrites any previously saved state.
	Save(ctx context.Context, state State) error
	// Clear removes the saved state, clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
