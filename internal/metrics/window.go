package metrics

import "time"

// DefaultWindowPoints is the rolling window capacity for per-second series:
// one minute of history at the standard 1s tick.
const DefaultWindowPoints = 60

// DefaultCoreWindowPoints is the rolling window capacity for per-core
// frequency series, which render in a narrower strip.
const DefaultCoreWindowPoints = 15

// Point is one timestamped sample in a rolling window.
type Point struct {
	Value float64
	At    time.Time
}

// RollingWindow is a fixed-capacity circular buffer holding the most recent
// points of one series. Appending to a full window evicts the oldest point.
// Reads return chronological order (oldest first).
type RollingWindow struct {
	points []Point
	head   int
	count  int
	size   int
}

// NewRollingWindow creates a window with the given capacity.
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = DefaultWindowPoints
	}
	return &RollingWindow{
		points: make([]Point, capacity),
		size:   capacity,
	}
}

// Push appends a point, evicting the oldest when the window is full.
func (w *RollingWindow) Push(value float64, at time.Time) {
	w.points[w.head] = Point{Value: value, At: at}
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Last returns up to count most recent values in chronological order.
func (w *RollingWindow) Last(count int) []float64 {
	if count <= 0 || w.count == 0 {
		return nil
	}

	if count > w.count {
		count = w.count
	}

	result := make([]float64, count)

	// head points at the next write slot, so the newest point sits at
	// head-1 and the requested run ends there.
	start := (w.head - count + w.size) % w.size

	for i := 0; i < count; i++ {
		idx := (start + i) % w.size
		result[i] = w.points[idx].Value
	}

	return result
}

// Values returns all stored values in chronological order.
func (w *RollingWindow) Values() []float64 {
	return w.Last(w.count)
}

// Latest returns the most recent point, if any.
func (w *RollingWindow) Latest() (Point, bool) {
	if w.count == 0 {
		return Point{}, false
	}
	idx := (w.head - 1 + w.size) % w.size
	return w.points[idx], true
}

// Len returns the number of stored points.
func (w *RollingWindow) Len() int {
	return w.count
}

// Cap returns the window capacity.
func (w *RollingWindow) Cap() int {
	return w.size
}

// Reset discards all points, keeping the capacity.
func (w *RollingWindow) Reset() {
	w.head = 0
	w.count = 0
}
