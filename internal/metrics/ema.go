package metrics

// DiskSpeedSmoothing is the smoothing factor applied to disk throughput so
// bursty I/O renders as a readable curve rather than a sawtooth.
const DiskSpeedSmoothing = 0.4

// EMA is an exponential moving average: s = alpha*x + (1-alpha)*s.
// The first sample passes through unchanged.
type EMA struct {
	alpha  float64
	value  float64
	primed bool
}

// NewEMA creates a smoother with the given factor in (0, 1]. Higher alpha
// weighs recent samples more.
func NewEMA(alpha float64) *EMA {
	return &EMA{alpha: alpha}
}

// Update folds in a new sample and returns the smoothed value.
func (e *EMA) Update(x float64) float64 {
	if !e.primed {
		e.value = x
		e.primed = true
		return x
	}
	e.value = e.alpha*x + (1-e.alpha)*e.value
	return e.value
}

// Value returns the current smoothed value.
func (e *EMA) Value() float64 {
	return e.value
}
