package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientStoresAndSendsCookies(t *testing.T) {
	var seen []*http.Cookie
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Cookies()
		http.SetCookie(w, &http.Cookie{Name: "agame_session", Value: "sess_abc", Path: "/api/"})
		http.SetCookie(w, &http.Cookie{Name: "agame_csrf", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, "agame_csrf", "X-CSRFToken")

	var res HealthResult
	require.NoError(t, c.Get("/api/health", &res))
	assert.Equal(t, "ok", res.Status)
	assert.Empty(t, seen)
	assert.Equal(t, map[string]string{"agame_session": "sess_abc", "agame_csrf": "tok"}, c.Cookies())

	require.NoError(t, c.Get("/api/health", nil))
	assert.Len(t, seen, 2)
}

func TestClientEchoesCSRFOnPost(t *testing.T) {
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-CSRFToken")
		_, _ = w.Write([]byte(`{"user_id":"u1","name":null,"points":3,"created_at":"2024-01-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, map[string]string{"agame_csrf": "tok"}, "agame_csrf", "X-CSRFToken")

	var p Profile
	require.NoError(t, c.Post("/api/user/me/points/", map[string]any{"amount": 3}, &p))
	assert.Equal(t, "tok", header)
	assert.Equal(t, int64(3), p.Points)
}

func TestClientPostWithoutCSRFCookie(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", nil, "agame_csrf", "X-CSRFToken")
	err := c.Post("/api/user/me/points/", map[string]any{}, nil)
	assert.ErrorIs(t, err, ErrNoCSRFCookie)
}

func TestClientDropsExpiredCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "agame_session", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, map[string]string{"agame_session": "old", "agame_csrf": "tok"}, "agame_csrf", "X-CSRFToken")
	require.NoError(t, c.Get("/", nil))
	assert.Equal(t, map[string]string{"agame_csrf": "tok"}, c.Cookies())
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, "agame_csrf", "X-CSRFToken")
	err := c.Get("/api/user/me/", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "RATE_LIMITED", apiErr.Code)
	assert.Equal(t, "slow down (RATE_LIMITED)", apiErr.Error())
}

func TestConfigCookieFileRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CookieFile = filepath.Join(t.TempDir(), "nested", "cookies.json")

	cookies, err := cfg.LoadCookies()
	require.NoError(t, err)
	assert.Empty(t, cookies)

	require.NoError(t, cfg.SaveCookies(map[string]string{"agame_session": "sess_x"}))

	cookies, err = cfg.LoadCookies()
	require.NoError(t, err)
	assert.Equal(t, "sess_x", cookies["agame_session"])
}

func TestOutputProfileText(t *testing.T) {
	var buf bytes.Buffer
	name := "ann"
	NewOutput("text", &buf).Print(Profile{
		UserID:    "u1",
		Name:      &name,
		Points:    7,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "User: ann (u1)\nPoints: 7\nCreated: 2024-01-01T12:00:00Z\n", buf.String())
}

func TestClientTrace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var trace bytes.Buffer
	c := NewClient(srv.URL, nil, "agame_csrf", "X-CSRFToken")
	c.Trace = &trace

	require.NoError(t, c.Get("/api/health", nil))
	assert.Equal(t, "> GET "+srv.URL+"/api/health\n< 204 No Content\n", trace.String())
}
