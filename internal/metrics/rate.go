package metrics

import "time"

// CounterRate derives a per-second rate from one monotonically increasing
// counter (bytes transferred, packets dropped, sectors written).
type CounterRate struct {
	prev    float64
	prevAt  time.Time
	rate    float64
	primed  bool
	rebased bool
}

// Update records a new raw counter reading and returns the derived rate.
//
// The first observation establishes the baseline and yields 0. A reading
// below the baseline means the counter reset or wrapped: the rate is 0 and
// the baseline rebases to the new value. Identical (or non-advancing)
// timestamps retain the prior rate rather than dividing by zero. Rates are
// never negative.
func (c *CounterRate) Update(value float64, now time.Time) float64 {
	c.rebased = false

	if !c.primed {
		c.prev = value
		c.prevAt = now
		c.primed = true
		c.rate = 0
		return 0
	}

	if !now.After(c.prevAt) {
		return c.rate
	}

	if value < c.prev {
		c.prev = value
		c.prevAt = now
		c.rate = 0
		c.rebased = true
		return 0
	}

	elapsed := now.Sub(c.prevAt).Seconds()
	c.rate = (value - c.prev) / elapsed
	c.prev = value
	c.prevAt = now
	return c.rate
}

// Rate returns the most recently derived rate without updating.
func (c *CounterRate) Rate() float64 {
	return c.rate
}

// Rebased reports whether the last Update saw a decreasing reading and
// rebased its baseline. Callers use it to log the anomaly.
func (c *CounterRate) Rebased() bool {
	return c.rebased
}

// CounterSet tracks rates for a dynamic set of named counters, one per
// device instance (disk name, interface name). Entries for devices that
// disappear are removed with Prune so unplugged hardware does not leak
// baselines.
type CounterSet struct {
	counters map[string]*CounterRate
}

// NewCounterSet creates an empty counter set.
func NewCounterSet() *CounterSet {
	return &CounterSet{counters: make(map[string]*CounterRate)}
}

// Update records a reading for the named counter and returns its rate.
func (s *CounterSet) Update(name string, value float64, now time.Time) float64 {
	c, ok := s.counters[name]
	if !ok {
		c = &CounterRate{}
		s.counters[name] = c
	}
	return c.Update(value, now)
}

// Rebased reports whether the named counter rebased on its last update.
func (s *CounterSet) Rebased(name string) bool {
	c, ok := s.counters[name]
	return ok && c.Rebased()
}

// Prune drops every counter whose name is not in live.
func (s *CounterSet) Prune(live map[string]bool) {
	for name := range s.counters {
		if !live[name] {
			delete(s.counters, name)
		}
	}
}

// Len returns the number of tracked counters.
func (s *CounterSet) Len() int {
	return len(s.counters)
}
