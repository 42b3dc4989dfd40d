package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flightwall/flightwall/pkg/aeroapi"
)

// Snapshot is the published result of one completed poll cycle. Snapshots
// are immutable once stored; readers never see a partially built one.
type Snapshot struct {
	Flights   []aeroapi.FlightDetail `json:"flights"`
	UpdatedAt time.Time              `json:"updated_at"`
	Cycle     uint64                 `json:"cycle"`
}

// Runner drives the pipeline on a fixed cadence in the background and
// publishes each cycle's snapshot for lock-free reads.
type Runner struct {
	pipeline *Pipeline
	interval time.Duration

	latest atomic.Pointer[Snapshot]
	cycle  uint64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner wraps a pipeline with a polling loop at the given interval.
func NewRunner(p *Pipeline, interval time.Duration) *Runner {
	r := &Runner{
		pipeline: p,
		interval: interval,
	}
	r.latest.Store(&Snapshot{})
	return r
}

// Latest returns the most recently published snapshot. Never nil; before
// the first cycle completes it is the zero snapshot.
func (r *Runner) Latest() *Snapshot {
	return r.latest.Load()
}

// PollOnce runs a single cycle synchronously and publishes its snapshot.
func (r *Runner) PollOnce(ctx context.Context) *Snapshot {
	start := time.Now()
	flights := r.pipeline.Poll(ctx)

	snap := &Snapshot{
		Flights:   flights,
		UpdatedAt: time.Now(),
		Cycle:     atomic.AddUint64(&r.cycle, 1),
	}
	r.latest.Store(snap)

	log.Printf("Pipeline: cycle %d complete: %d flights [%s], %d cached details, took %v",
		snap.Cycle, len(flights), identList(flights), r.pipeline.CacheLen(),
		time.Since(start).Round(time.Millisecond))
	return snap
}

func identList(flights []aeroapi.FlightDetail) string {
	idents := make([]string, len(flights))
	for i, f := range flights {
		idents[i] = f.Ident
	}
	return strings.Join(idents, " ")
}

// Start launches the polling loop. The first cycle runs immediately, then
// every interval until Stop or the parent context ends.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.run(runCtx)
	return nil
}

// Stop cancels the polling loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
}

// IsRunning reports whether the background loop is active.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.PollOnce(ctx)
		}
	}
}
