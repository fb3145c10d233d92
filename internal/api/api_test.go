package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/agame/internal/api/apierr"
	"github.com/mcoot/agame/internal/api/response"
	"github.com/mcoot/agame/internal/config"
	"github.com/mcoot/agame/internal/factory"
	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/throttle"
)

// testClient behaves like a browser: it keeps cookies between requests
// and echoes the CSRF cookie on mutating calls.
type testClient struct {
	t       *testing.T
	handler http.Handler

	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *factory.TestApp {
	t.Helper()
	cfg := config.Default()
	cfg.CookieSecure = false
	cfg.ThrottleRates = throttle.Rates{}
	return factory.NewTestAppWithConfig(cfg)
}

func newClient(t *testing.T, h http.Handler) *testClient {
	return &testClient{t: t, handler: h, cookies: make(map[string]*http.Cookie)}
}

func (c *testClient) cookie(name string) *http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookies[name]
}

func (c *testClient) setCookie(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies[name] = &http.Cookie{Name: name, Value: value}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.mu.Lock()
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	c.mu.Unlock()

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	c.mu.Lock()
	for _, ck := range rr.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	c.mu.Unlock()
	return rr
}

func (c *testClient) getMe() *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, "/api/user/me/", nil))
}

// addPoints posts a JSON body, echoing the CSRF cookie in the header
func (c *testClient) addPoints(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/user/me/points/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if ck := c.cookie("agame_csrf"); ck != nil {
		req.Header.Set("X-CSRFToken", ck.Value)
	}
	return c.do(req)
}

func decodeProfile(t *testing.T, rr *httptest.ResponseRecorder) response.Profile {
	t.Helper()
	var p response.Profile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p), rr.Body.String())
	return p
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var e apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e), rr.Body.String())
	return e.Error
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	rr := c.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestGetMeCreatesThenReuses(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	first := c.getMe()
	require.Equal(t, http.StatusCreated, first.Code)
	p1 := decodeProfile(t, first)
	assert.NotEmpty(t, p1.UserID)
	assert.True(t, model.UserID(p1.UserID).Valid())
	assert.Equal(t, int64(0), p1.Points)
	assert.Nil(t, p1.Name)
	assert.True(t, app.MockClock.Now().Equal(p1.CreatedAt))

	second := c.getMe()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, p1.UserID, decodeProfile(t, second).UserID)
}

func TestGetMeResponseShape(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	rr := c.getMe()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"user_id", "name", "points", "created_at"}, keys)
	assert.Nil(t, body["name"])
}

func TestSeparateClientsGetSeparateUsers(t *testing.T) {
	app := newTestApp(t)
	a := newClient(t, app.Handler())
	b := newClient(t, app.Handler())

	pa := decodeProfile(t, a.getMe())
	pb := decodeProfile(t, b.getMe())
	assert.NotEqual(t, pa.UserID, pb.UserID)
}

func TestOrphanedSessionSelfHeals(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	old := decodeProfile(t, c.getMe())
	require.NoError(t, app.Storage.DeleteUser(context.Background(), model.UserID(old.UserID)))

	rr := c.getMe()
	require.Equal(t, http.StatusCreated, rr.Code)
	fresh := decodeProfile(t, rr)
	assert.NotEqual(t, old.UserID, fresh.UserID)

	// The session now points at the new user
	rr = c.getMe()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, fresh.UserID, decodeProfile(t, rr).UserID)
}

func TestForgedSessionTokenIsNotAdopted(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.setCookie("agame_session", "sess_chosen-by-client")

	rr := c.getMe()
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEqual(t, "sess_chosen-by-client", c.cookie("agame_session").Value)
}

func TestAddPointsAccumulates(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	rr := c.addPoints(`{"amount": 5}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(5), decodeProfile(t, rr).Points)

	rr = c.addPoints(`{"amount": 10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(15), decodeProfile(t, rr).Points)

	assert.Equal(t, int64(15), decodeProfile(t, c.getMe()).Points)
}

func TestAddPointsDefaultAmount(t *testing.T) {
	for name, body := range map[string]string{"empty object": `{}`, "empty body": ``} {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(t)
			c := newClient(t, app.Handler())
			c.getMe()

			rr := c.addPoints(body)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, int64(1), decodeProfile(t, rr).Points)
		})
	}
}

func TestAddPointsStringAmount(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	rr := c.addPoints(`{"amount": "7"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(7), decodeProfile(t, rr).Points)
}

func TestAddPointsInvalidAmount(t *testing.T) {
	for _, amount := range []string{`"abc"`, `0`, `-1`, `1.5`, `true`, `null`, `9223372036854775808`} {
		t.Run(amount, func(t *testing.T) {
			app := newTestApp(t)
			c := newClient(t, app.Handler())
			c.getMe()

			rr := c.addPoints(`{"amount": ` + amount + `}`)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidAmount, decodeError(t, rr).Code)

			assert.Equal(t, int64(0), decodeProfile(t, c.getMe()).Points)
		})
	}
}

func TestAddPointsTotalOverflowIsRejected(t *testing.T) {
	for _, amount := range []string{`9223372036854775807`, `"9223372036854775807"`} {
		t.Run(amount, func(t *testing.T) {
			app := newTestApp(t)
			c := newClient(t, app.Handler())
			c.getMe()
			require.Equal(t, http.StatusOK, c.addPoints(`{"amount": 3}`).Code)

			rr := c.addPoints(`{"amount": ` + amount + `}`)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidAmount, decodeError(t, rr).Code)

			assert.Equal(t, int64(3), decodeProfile(t, c.getMe()).Points)
		})
	}
}

func TestAddPointsMalformedBody(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	rr := c.addPoints(`{"amount": `)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestAddPointsWithoutIdentity(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	// A valid CSRF pairing but no session
	c.setCookie("agame_csrf", "freshtoken")

	rr := c.addPoints(`{"amount": 1}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeNoIdentity, decodeError(t, rr).Code)
}

func TestIdentityCheckedBeforeAmount(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.setCookie("agame_csrf", "freshtoken")

	rr := c.addPoints(`{"amount": "abc"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAddPointsForDeletedUser(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	p := decodeProfile(t, c.getMe())
	require.NoError(t, app.Storage.DeleteUser(context.Background(), model.UserID(p.UserID)))

	rr := c.addPoints(`{"amount": 3}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeUserNotFound, decodeError(t, rr).Code)

	// No recreation
	_, err := app.Storage.GetProfile(context.Background(), model.UserID(p.UserID))
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestCSRFRequired(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	req := httptest.NewRequest(http.MethodPost, "/api/user/me/points/", strings.NewReader(`{"amount": 5}`))
	req.Header.Set("Content-Type", "application/json")
	rr := c.do(req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeCSRFFailed, decodeError(t, rr).Code)
	assert.Equal(t, int64(0), decodeProfile(t, c.getMe()).Points)
}

func TestCSRFMismatch(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	req := httptest.NewRequest(http.MethodPost, "/api/user/me/points/", strings.NewReader(`{"amount": 5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRFToken", "not-the-cookie")
	rr := c.do(req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCSRFCheckedBeforeIdentity(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	rr := c.addPoints(`{"amount": 1}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeCSRFFailed, decodeError(t, rr).Code)
}

func TestCSRFFormFieldEcho(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	form := url.Values{
		"csrfmiddlewaretoken": {c.cookie("agame_csrf").Value},
		"amount":              {"4"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/user/me/points/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := c.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(4), decodeProfile(t, rr).Points)
}

func TestCSRFUntrustedOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.CookieSecure = false
	cfg.ThrottleRates = throttle.Rates{}
	cfg.CSRFTrustedOrigins = []string{"https://app.example"}
	app := factory.NewTestAppWithConfig(cfg)
	c := newClient(t, app.Handler())
	c.getMe()

	post := func(origin string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/user/me/points/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-CSRFToken", c.cookie("agame_csrf").Value)
		req.Header.Set("Origin", origin)
		return c.do(req).Code
	}

	assert.Equal(t, http.StatusForbidden, post("https://evil.example"))
	assert.Equal(t, http.StatusOK, post("https://app.example"))
}

func TestCookieAttributes(t *testing.T) {
	app := factory.NewTestAppWithConfig(config.Default())
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/user/me/", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	byName := map[string]*http.Cookie{}
	for _, ck := range rr.Result().Cookies() {
		byName[ck.Name] = ck
	}

	sess := byName["agame_session"]
	require.NotNil(t, sess)
	assert.True(t, sess.HttpOnly)
	assert.True(t, sess.Secure)
	assert.Equal(t, http.SameSiteLaxMode, sess.SameSite)
	assert.Equal(t, "/api/", sess.Path)
	assert.True(t, strings.HasPrefix(sess.Value, "sess_"))

	csrf := byName["agame_csrf"]
	require.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
	assert.True(t, csrf.Secure)
	assert.Equal(t, http.SameSiteLaxMode, csrf.SameSite)
	assert.Equal(t, "/api/", csrf.Path)
	assert.Equal(t, int((365 * 24 * time.Hour).Seconds()), csrf.MaxAge)
}

func TestCSRFCookieKeptAcrossRequests(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	c.getMe()
	first := c.cookie("agame_csrf").Value
	c.getMe()
	assert.Equal(t, first, c.cookie("agame_csrf").Value)
}

func TestThrottleDeniesWithoutTouchingStorage(t *testing.T) {
	cfg := config.Default()
	cfg.CookieSecure = false
	cfg.ThrottleRates = throttle.Rates{
		throttle.ScopePoints: {Requests: 2, Period: time.Minute},
	}
	app := factory.NewTestAppWithConfig(cfg)
	c := newClient(t, app.Handler())
	c.getMe()

	require.Equal(t, http.StatusOK, c.addPoints(`{"amount": 1}`).Code)
	require.Equal(t, http.StatusOK, c.addPoints(`{"amount": 1}`).Code)

	rr := c.addPoints(`{"amount": 1}`)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, apierr.CodeRateLimited, decodeError(t, rr).Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))

	assert.Equal(t, int64(2), decodeProfile(t, c.getMe()).Points)
}

func TestThrottleKeysBySession(t *testing.T) {
	cfg := config.Default()
	cfg.CookieSecure = false
	cfg.ThrottleRates = throttle.Rates{
		throttle.ScopePoints: {Requests: 1, Period: time.Minute},
	}
	app := factory.NewTestAppWithConfig(cfg)

	// Same remote address, different sessions
	a := newClient(t, app.Handler())
	b := newClient(t, app.Handler())
	a.getMe()
	b.getMe()

	assert.Equal(t, http.StatusOK, a.addPoints(`{}`).Code)
	assert.Equal(t, http.StatusOK, b.addPoints(`{}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, a.addPoints(`{}`).Code)
}

func TestConcurrentIncrementsSum(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())
	c.getMe()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.addPoints(`{"amount": 2}`)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), decodeProfile(t, c.getMe()).Points)
}

func TestCORSPreflight(t *testing.T) {
	cfg := config.Default()
	cfg.CORSAllowedOrigins = []string{"https://app.example"}
	app := factory.NewTestAppWithConfig(cfg)
	h := app.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/user/me/points/", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-CSRFToken")

	req = httptest.NewRequest(http.MethodGet, "/api/user/me/", nil)
	req.Header.Set("Origin", "https://other.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestWrongMethodNotAllowed(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app.Handler())

	rr := c.do(httptest.NewRequest(http.MethodPost, "/api/user/me/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
