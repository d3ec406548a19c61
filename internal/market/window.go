// Package market simulates the live index and commodity tiles on the home
// view: a bounded price window per instrument, a pluggable price feed, and a
// cron-driven ticker that advances every series on a fixed interval.
package market

// DefaultWindow is the number of samples kept per series.
const DefaultWindow = 7

// Window is a fixed-capacity FIFO of price samples. Pushing into a full
// window evicts the oldest sample. A Window is not safe for concurrent use;
// Series and Ticker guard it.
type Window struct {
	capacity int
	values   []float64
}

// NewWindow creates a window with the given capacity (DefaultWindow if
// capacity < 1) seeded with the trailing samples of seed.
func NewWindow(capacity int, seed ...float64) *Window {
	if capacity < 1 {
		capacity = DefaultWindow
	}
	w := &Window{capacity: capacity, values: make([]float64, 0, capacity)}
	for _, v := range seed {
		w.Push(v)
	}
	return w
}

// Push appends v, dropping the oldest sample when the window is full.
func (w *Window) Push(v float64) {
	if len(w.values) == w.capacity {
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}
	w.values = append(w.values, v)
}

// Last returns the newest sample, or false when the window is empty.
func (w *Window) Last() (float64, bool) {
	if len(w.values) == 0 {
		return 0, false
	}
	return w.values[len(w.values)-1], true
}

// Values returns a copy of the samples, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Len returns the number of samples held.
func (w *Window) Len() int { return len(w.values) }

// Cap returns the window capacity.
func (w *Window) Cap() int { return w.capacity }
