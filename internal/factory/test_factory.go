package factory

import (
	"time"

	"github.com/mcoot/agame/internal/config"
	"github.com/mcoot/agame/internal/dependencies/mocks"
	sessionmemory "github.com/mcoot/agame/internal/session/memory"
	"github.com/mcoot/agame/internal/storage/memory"
	"github.com/mcoot/agame/internal/testutil"
	"github.com/mcoot/agame/internal/throttle"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Direct access to the in-memory backends
	MemoryStorage *memory.Storage
	MemorySession *sessionmemory.Store

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with in-memory backends
// and mocked dependencies. Cookies are not marked Secure so that plain HTTP
// test clients send them back.
func NewTestApp() *TestApp {
	cfg := config.Default()
	cfg.CookieSecure = false
	return NewTestAppWithConfig(cfg)
}

// NewTestAppWithConfig is NewTestApp with an explicit configuration.
// Backend selections in cfg are ignored.
func NewTestAppWithConfig(cfg config.Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	store := memory.New(mockClock)
	sessions := sessionmemory.New(mockClock)
	limiter := throttle.NewLocalLimiter(cfg.ThrottleRates, mockClock, 0)

	app := newWithDependencies(cfg, store, sessions, limiter, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MemoryStorage: store,
		MemorySession: sessions,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
	}
}
