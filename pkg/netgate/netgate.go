// Package netgate serializes outbound network calls behind a single
// exclusive gate.
//
// The pipeline talks to two external APIs over one shared transport; letting
// their requests interleave caused TLS sessions to trip over each other on
// constrained links. The gate enforces one in-flight request at a time, with
// a bounded wait so a stalled holder cannot starve everyone else. A failed
// acquisition is a soft signal: callers skip the operation for this cycle
// rather than treating it as an error.
package netgate

import "time"

// Gate is an exclusive lock with bounded-wait acquisition.
// The zero value is not usable; call New.
type Gate struct {
	slot chan struct{}
}

// New creates an unheld gate.
func New() *Gate {
	return &Gate{slot: make(chan struct{}, 1)}
}

// Acquire attempts to take the gate, waiting at most timeout.
// Returns true if the gate was acquired. Callers that receive false must
// treat the guarded operation as skipped, not failed.
func (g *Gate) Acquire(timeout time.Duration) bool {
	select {
	case g.slot <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case g.slot <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Release returns the gate. Safe to call only after a successful Acquire;
// every exit path of the guarded operation must release exactly once.
func (g *Gate) Release() {
	select {
	case <-g.slot:
	default:
		// Released without holding. Nothing sensible to do beyond not
		// corrupting the slot.
	}
}
