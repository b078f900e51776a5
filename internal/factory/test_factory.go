package factory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cursormemory "github.com/mcoot/apl-auction/internal/cursor/memory"
	"github.com/mcoot/apl-auction/internal/dependencies/mocks"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/services/auth"
	"github.com/mcoot/apl-auction/internal/storage/memory"
	"github.com/mcoot/apl-auction/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MockMetrics *metrics.Mock
	MemStorage  *memory.Storage
	MemCursor   *cursormemory.Channel
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	channel := cursormemory.New()
	mockClock := mocks.NewMockClock(testutil.FixtureTime.Add(24 * time.Hour))
	mockRandom := mocks.NewMockRandom()
	mockMetrics := metrics.NewMock()

	app := newWithDependencies(store, channel, mockClock, mockRandom, mockMetrics, auth.DefaultConfig(), nil, testutil.NopLogger())
	app.MetricsHandler = metrics.NewMetricsHandler(prometheus.NewRegistry())

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MockMetrics: mockMetrics,
		MemStorage:  store,
		MemCursor:   channel,
	}
}
