package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/apl-auction/internal/testutil"
)

type countingRebroadcaster struct {
	calls atomic.Int32
}

func (c *countingRebroadcaster) Rebroadcast(context.Context) (bool, error) {
	c.calls.Add(1)
	return true, nil
}

type countingCleaner struct {
	calls atomic.Int32
}

func (c *countingCleaner) CleanExpiredSessions() int {
	c.calls.Add(1)
	return 1
}

func TestSchedulerRunsJobs(t *testing.T) {
	cursor := &countingRebroadcaster{}
	sessions := &countingCleaner{}
	s, err := New(Config{CursorRebroadcast: 20 * time.Millisecond, SessionCleanup: 20 * time.Millisecond}, cursor, sessions, testutil.NopLogger())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool {
		return cursor.calls.Load() >= 2 && sessions.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerSkipsDisabledJobs(t *testing.T) {
	cursor := &countingRebroadcaster{}
	sessions := &countingCleaner{}
	s, err := New(Config{SessionCleanup: 20 * time.Millisecond}, cursor, sessions, testutil.NopLogger())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Len(t, s.s.Jobs(), 1)
	require.NoError(t, s.Stop())
	assert.Zero(t, cursor.calls.Load())
}
