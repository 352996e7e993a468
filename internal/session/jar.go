package session

import (
	"context"
	"net/http"
	"sync"
)

// CookieJar is the cookie storage of one execution context.
type CookieJar interface {
	Get(name string) (string, bool)
	Set(c *http.Cookie)
	Delete(name string)
}

type jarKey struct{}

// WithCookieJar returns a context carrying jar as its ambient cookie storage.
func WithCookieJar(ctx context.Context, jar CookieJar) context.Context {
	return context.WithValue(ctx, jarKey{}, jar)
}

// CookieJarFrom returns the ambient cookie jar of ctx, if any.
func CookieJarFrom(ctx context.Context) (CookieJar, bool) {
	jar, ok := ctx.Value(jarKey{}).(CookieJar)
	return jar, ok && jar != nil
}

// RequestJar is the CookieJar of one HTTP exchange. Reads come from the
// request, writes go out as Set-Cookie headers and shadow the request's
// cookies for the rest of the exchange.
type RequestJar struct {
	w http.ResponseWriter
	r *http.Request

	mu      sync.Mutex
	written map[string]*http.Cookie
}

// NewRequestJar creates a RequestJar for the exchange.
func NewRequestJar(w http.ResponseWriter, r *http.Request) *RequestJar {
	return &RequestJar{w: w, r: r, written: make(map[string]*http.Cookie)}
}

// Get returns the value of the named cookie as the client will next see it.
func (j *RequestJar) Get(name string) (string, bool) {
	j.mu.Lock()
	c, ok := j.written[name]
	j.mu.Unlock()
	if ok {
		if c.MaxAge < 0 {
			return "", false
		}
		return c.Value, true
	}

	rc, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return rc.Value, true
}

// Set writes c to the response.
func (j *RequestJar) Set(c *http.Cookie) {
	j.mu.Lock()
	j.written[c.Name] = c
	j.mu.Unlock()
	http.SetCookie(j.w, c)
}

// Delete expires the named cookie on the client.
func (j *RequestJar) Delete(name string) {
	j.Set(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
}
