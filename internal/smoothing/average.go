package smoothing

// DefaultWindow is the number of samples a detector averages over.
const DefaultWindow = 5

// #region moving-average
// MovingAverage keeps the most recent samples in a fixed-capacity ring and
// reports their sum divided by the capacity. Until the ring fills, missing
// samples count as zero, so a detector needs sustained true samples before it
// crosses its threshold.
type MovingAverage struct {
	window []float64
	next   int
	count  int
}

// NewMovingAverage creates an empty average over capacity samples.
// A capacity below 1 is treated as 1.
func NewMovingAverage(capacity int) *MovingAverage {
	if capacity < 1 {
		capacity = 1
	}
	return &MovingAverage{window: make([]float64, capacity)}
}

// Add appends a numeric sample, evicting the oldest once the window is full.
func (m *MovingAverage) Add(v float64) {
	if m.count < len(m.window) {
		m.count++
	}
	m.window[m.next] = v
	m.next = (m.next + 1) % len(m.window)
}

// AddBool appends 1 for true and 0 for false.
func (m *MovingAverage) AddBool(b bool) {
	if b {
		m.Add(1)
		return
	}
	m.Add(0)
}

// Average returns the window sum divided by the window capacity. The sum is
// taken fresh over the held samples so evicted values leave no residue.
func (m *MovingAverage) Average() float64 {
	var sum float64
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}

// Reset clears every sample.
func (m *MovingAverage) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.next = 0
	m.count = 0
}

// Len returns how many samples are currently held.
func (m *MovingAverage) Len() int { return m.count }

// Capacity returns the window size.
func (m *MovingAverage) Capacity() int { return len(m.window) }

// #endregion moving-average
