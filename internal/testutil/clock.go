package testutil

// SeqClock is a monotonic logical clock for tool-call traces.
//
// Sequence numbers order calls within one scenario run. Wall-clock time is
// never recorded, so the same scenario always yields the same trace.
//
// A SeqClock is not safe for concurrent use; scenario runs are serialized.
type SeqClock struct {
	seq int64
}

// NewSeqClock creates a clock whose first Next() returns 1.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next advances the clock and returns the new sequence number.
func (c *SeqClock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last issued sequence number (0 before any Next).
func (c *SeqClock) Current() int64 {
	return c.seq
}

// Reset rewinds the clock so the next call to Next returns 1.
func (c *SeqClock) Reset() {
	c.seq = 0
}
