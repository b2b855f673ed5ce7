package smoothing

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAverageZeroPadsPartialWindow(t *testing.T) {
	m := NewMovingAverage(5)
	if m.Average() != 0 {
		t.Fatalf("expected 0 for empty window, got %f", m.Average())
	}

	m.AddBool(true)
	m.AddBool(true)
	// 2 of 5 slots filled: divide by capacity, not by sample count
	if got := m.Average(); !almostEqual(got, 0.4) {
		t.Fatalf("expected 0.4, got %f", got)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 samples, got %d", m.Len())
	}
}

func TestAverageEvictsOldest(t *testing.T) {
	m := NewMovingAverage(3)
	for _, v := range []float64{1, 1, 1} {
		m.Add(v)
	}
	if got := m.Average(); !almostEqual(got, 1) {
		t.Fatalf("expected 1, got %f", got)
	}

	m.Add(0)
	if got := m.Average(); !almostEqual(got, 2.0/3.0) {
		t.Fatalf("expected 2/3, got %f", got)
	}
	m.Add(0)
	m.Add(0)
	if got := m.Average(); !almostEqual(got, 0) {
		t.Fatalf("expected 0 after rolling out, got %f", got)
	}
	if m.Len() != 3 {
		t.Fatalf("expected len capped at 3, got %d", m.Len())
	}
}

func TestAverageNumericSamples(t *testing.T) {
	m := NewMovingAverage(4)
	m.Add(0.5)
	m.Add(1.5)
	if got := m.Average(); !almostEqual(got, 0.5) {
		t.Fatalf("expected 0.5, got %f", got)
	}
}

// Fractional samples rolled fully out of the window must leave exactly zero.
func TestAverageNoDriftAfterEviction(t *testing.T) {
	m := NewMovingAverage(3)
	for _, v := range []float64{0.1, 0.2, 0.7} {
		m.Add(v)
	}
	for i := 0; i < 3; i++ {
		m.Add(0)
	}
	if got := m.Average(); got != 0 {
		t.Fatalf("expected exactly 0 after eviction, got %g", got)
	}

	// long runs of mixed samples return to the exact bool ratio
	for i := 0; i < 1000; i++ {
		m.Add(0.1)
		m.Add(0.3)
	}
	m.AddBool(true)
	m.AddBool(true)
	m.AddBool(false)
	if got := m.Average(); got != 2.0/3.0 {
		t.Fatalf("expected exactly 2/3, got %g", got)
	}
}

func TestReset(t *testing.T) {
	m := NewMovingAverage(2)
	m.AddBool(true)
	m.AddBool(true)
	m.Reset()
	if m.Average() != 0 || m.Len() != 0 {
		t.Fatalf("expected empty after reset, avg=%f len=%d", m.Average(), m.Len())
	}
	m.AddBool(true)
	if got := m.Average(); !almostEqual(got, 0.5) {
		t.Fatalf("expected 0.5 after reset+add, got %f", got)
	}
}

func TestCapacityFloor(t *testing.T) {
	m := NewMovingAverage(0)
	if m.Capacity() != 1 {
		t.Fatalf("expected capacity 1, got %d", m.Capacity())
	}
	m.AddBool(true)
	if m.Average() != 1 {
		t.Fatalf("expected 1, got %f", m.Average())
	}
}
