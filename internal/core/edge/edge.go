// Package edge detects rising and falling edges of a configuration-change rate signal
package edge

// Event is an edge emission from the detector
type Event int

const (
	// None means the sample did not cross a boundary
	None Event = iota
	// Started fires on the rising edge: the signal went above zero
	Started
	// Settled fires on the falling edge: the signal returned to zero
	// after having been above it
	Settled
)

// String names the event for logs
func (e Event) String() string {
	switch e {
	case Started:
		return "started"
	case Settled:
		return "settled"
	default:
		return "none"
	}
}

// Detector is a two-state machine over non-negative rate samples.
// The zero value starts Idle, which is the correct initial state: a missed
// edge after a restart degrades to "no diff baseline", never a double fire.
type Detector struct {
	changing bool
}

// Changing reports whether the last sample left the detector above zero
func (d *Detector) Changing() bool { return d.changing }

// Observe consumes one sample and returns the edge it produced, if any.
// Repeated zero or repeated positive samples are absorbed silently because
// the host delivers a sample on every poll, not only on transitions.
func (d *Detector) Observe(sample float64) Event {
	switch {
	case !d.changing && sample > 0:
		d.changing = true
		return Started
	case d.changing && sample == 0:
		d.changing = false
		return Settled
	default:
		return None
	}
}

// Reset returns the detector to Idle without emitting anything
func (d *Detector) Reset() { d.changing = false }
