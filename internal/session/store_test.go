package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJar struct {
	values  map[string]string
	sets    []*http.Cookie
	deletes []string
}

func newFakeJar() *fakeJar {
	return &fakeJar{values: make(map[string]string)}
}

func (j *fakeJar) Get(name string) (string, bool) {
	v, ok := j.values[name]
	return v, ok
}

func (j *fakeJar) Set(c *http.Cookie) {
	j.sets = append(j.sets, c)
	j.values[c.Name] = c.Value
}

func (j *fakeJar) Delete(name string) {
	j.deletes = append(j.deletes, name)
	delete(j.values, name)
}

func newTestStore(t *testing.T) (*Store, *TokenService) {
	t.Helper()
	ts := newTokens(t, "development-secret-key")
	return NewStore(ts, false), ts
}

func TestStore_Create(t *testing.T) {
	store, ts := newTestStore(t)
	jar := newFakeJar()
	ctx := WithCookieJar(context.Background(), jar)

	before := time.Now()
	claims, err := store.Create(ctx, "user-456", "alice@example.com")
	after := time.Now()
	require.NoError(t, err)

	require.Len(t, jar.sets, 1)
	c := jar.sets[0]
	assert.Equal(t, "auth-token", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.False(t, c.Secure)
	assert.Equal(t, claims.ExpiresAt, c.Expires)
	assert.False(t, c.Expires.Before(before.Add(DefaultTTL)))
	assert.False(t, c.Expires.After(after.Add(DefaultTTL)))

	got, ok := ts.Verify(c.Value)
	require.True(t, ok)
	assert.Equal(t, "user-456", got.UserID)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestStore_CreateOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	jar := newFakeJar()
	ctx := WithCookieJar(context.Background(), jar)

	_, err := store.Create(ctx, "user-1", "one@example.com")
	require.NoError(t, err)
	_, err = store.Create(ctx, "user-2", "two@example.com")
	require.NoError(t, err)

	claims := store.ReadCurrent(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "user-2", claims.UserID)
}

func TestStore_SecureCookie(t *testing.T) {
	ts := newTokens(t, "secret")
	jar := newFakeJar()
	_, err := NewStore(ts, true).Create(WithCookieJar(context.Background(), jar), "u", "u@example.com")
	require.NoError(t, err)
	assert.True(t, jar.sets[0].Secure)
}

func TestStore_NoJar(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Create(context.Background(), "u", "u@example.com")
	assert.ErrorIs(t, err, ErrNoCookieJar)
	assert.ErrorIs(t, store.Destroy(context.Background()), ErrNoCookieJar)
	assert.Nil(t, store.ReadCurrent(context.Background()))
}

func TestStore_Destroy(t *testing.T) {
	store, _ := newTestStore(t)
	jar := newFakeJar()
	ctx := WithCookieJar(context.Background(), jar)

	require.NoError(t, store.Destroy(ctx))
	assert.Equal(t, []string{"auth-token"}, jar.deletes)
}

func TestStore_ReadFromRequest(t *testing.T) {
	store, ts := newTestStore(t)
	valid, _, err := ts.Issue("user-789", "bob@example.com")
	require.NoError(t, err)

	request := func(token string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}
		return r
	}

	assert.Nil(t, store.ReadFromRequest(request("")))
	assert.Nil(t, store.ReadFromRequest(request("not-a-jwt")))
	assert.Nil(t, store.ReadFromRequest(request(valid+"tampered")))

	claims := store.ReadFromRequest(request(valid))
	require.NotNil(t, claims)
	assert.Equal(t, "user-789", claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
}

func TestStore_ReadCurrent(t *testing.T) {
	store, ts := newTestStore(t)
	valid, _, err := ts.Issue("user-123", "test@example.com")
	require.NoError(t, err)

	jar := newFakeJar()
	ctx := WithCookieJar(context.Background(), jar)
	assert.Nil(t, store.ReadCurrent(ctx))

	jar.values[CookieName] = "not-a-jwt"
	assert.Nil(t, store.ReadCurrent(ctx))

	jar.values[CookieName] = valid
	claims := store.ReadCurrent(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestRequestJar(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "anon-id", Value: "abc"})
	w := httptest.NewRecorder()
	jar := NewRequestJar(w, r)

	v, ok := jar.Get("anon-id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = jar.Get(CookieName)
	assert.False(t, ok)

	jar.Set(&http.Cookie{Name: CookieName, Value: "tok", Path: "/"})
	v, ok = jar.Get(CookieName)
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	jar.Delete("anon-id")
	_, ok = jar.Get("anon-id")
	assert.False(t, ok)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "anon-id", cookies[1].Name)
	assert.Equal(t, -1, cookies[1].MaxAge)
}
