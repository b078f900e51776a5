package mocks

import (
	"sync"

	"github.com/mcoot/apl-auction/internal/dependencies/random"
)

// MockRandom replays queued Intn results. With an empty queue it returns 0,
// which selects the first candidate.
type MockRandom struct {
	mu    sync.Mutex
	queue []int
	calls []int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates an empty MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued value, wrapped into [0, n)
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, n)
	if n <= 0 || len(r.queue) == 0 {
		return 0
	}
	v := r.queue[0]
	r.queue = r.queue[1:]
	return v % n
}

// QueueIntn appends values to the result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	r.queue = append(r.queue, values...)
	r.mu.Unlock()
}

// Calls returns the n argument of every Intn call so far
func (r *MockRandom) Calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}

// Reset clears the queue and call history
func (r *MockRandom) Reset() {
	r.mu.Lock()
	r.queue = nil
	r.calls = nil
	r.mu.Unlock()
}
