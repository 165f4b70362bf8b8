package dice

import "sync"

// MockSource is a scripted Source for tests. Unset funcs fall back to
// deterministic defaults: Bool false, Float64 0.5, IntN 0.
type MockSource struct {
	BoolFunc    func(p float64) bool
	Float64Func func() float64
	IntNFunc    func(n int) int

	// Track calls for testing
	BoolCalls    int
	Float64Calls int
	IntNCalls    []int

	mu sync.Mutex // protects all fields above
}

var _ Source = (*MockSource)(nil)

func (m *MockSource) Bool(p float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BoolCalls++
	if m.BoolFunc != nil {
		return m.BoolFunc(p)
	}
	return false
}

func (m *MockSource) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Float64Calls++
	if m.Float64Func != nil {
		return m.Float64Func()
	}
	return 0.5
}

func (m *MockSource) IntN(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IntNCalls = append(m.IntNCalls, n)
	if m.IntNFunc != nil {
		return m.IntNFunc(n)
	}
	return 0
}
