package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/flightwall/flightwall/pkg/aeroapi"
	"github.com/flightwall/flightwall/pkg/opensky"
)

func newTestRunner(interval time.Duration) (*Runner, *fakeStates, *fakeDetails) {
	det := &fakeDetails{details: map[string]*aeroapi.FlightDetail{
		"DLH441": detail("DLH441", "DLH", "A343"),
	}}
	st := &fakeStates{states: []opensky.StateVector{state("DLH441", 10000, 230)}}
	return NewRunner(newTestPipeline(st, det, 2), interval), st, det
}

func TestRunnerLatestNeverNil(t *testing.T) {
	r, _, _ := newTestRunner(time.Hour)

	snap := r.Latest()
	if snap == nil {
		t.Fatal("Expected a zero snapshot before the first cycle, got nil")
	}
	if snap.Cycle != 0 || len(snap.Flights) != 0 {
		t.Errorf("Expected empty initial snapshot, got cycle %d with %d flights",
			snap.Cycle, len(snap.Flights))
	}
}

func TestRunnerPollOncePublishes(t *testing.T) {
	r, _, _ := newTestRunner(time.Hour)

	snap := r.PollOnce(context.Background())
	if snap.Cycle != 1 {
		t.Errorf("Expected cycle 1, got %d", snap.Cycle)
	}
	if len(snap.Flights) != 1 || snap.Flights[0].Ident != "DLH441" {
		t.Errorf("Expected the enriched flight in the snapshot, got %+v", snap.Flights)
	}
	if got := r.Latest(); got != snap {
		t.Error("Expected Latest to return the published snapshot")
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestRunnerStartStop(t *testing.T) {
	r, st, _ := newTestRunner(10 * time.Millisecond)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !r.IsRunning() {
		t.Error("Expected runner to report running after Start")
	}

	// Starting again is a no-op.
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Second Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Latest().Cycle < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.Latest().Cycle < 2 {
		t.Fatalf("Expected at least 2 cycles, got %d", r.Latest().Cycle)
	}

	r.Stop()
	if r.IsRunning() {
		t.Error("Expected runner to report stopped after Stop")
	}

	// No cycles after Stop.
	cycles := r.Latest().Cycle
	calls := st.calls
	time.Sleep(30 * time.Millisecond)
	if r.Latest().Cycle != cycles || st.calls != calls {
		t.Error("Expected no polling after Stop")
	}

	// Stop again is a no-op.
	r.Stop()
}
