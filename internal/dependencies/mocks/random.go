package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/gomoku-go/internal/dependencies/random"
)

// MockRandom replays queued values. When the ID queue is empty it falls back
// to sequential identifiers so tests that create several games stay distinct.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	idResults   []string
	idCounter   int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result clamped to [0, n), or 0 if none remain
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intnResults) == 0 || n <= 0 {
		return 0
	}
	result := r.intnResults[0]
	r.intnResults = r.intnResults[1:]
	return result % n
}

// ID returns the next queued identifier or a sequential one
func (r *MockRandom) ID(length int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.idResults) > 0 {
		result := r.idResults[0]
		r.idResults = r.idResults[1:]
		return result
	}
	r.idCounter++
	return fmt.Sprintf("ID%0*d", max(length-2, 1), r.idCounter)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueID adds values to the ID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idResults = append(r.idResults, values...)
}
