// Package gate provides the bounded concurrency gate that caps in-flight
// FPDS requests.
//
// A Gate holds N permits. Acquire blocks until a permit is free; waiters are
// admitted in FIFO order, so no caller starves while permits keep being
// released. Release without a matching Acquire panics.
package gate

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for gate admission.
var (
	gateInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fpds_gate_in_flight",
		Help: "Number of permits currently held across all gates",
	})

	gateWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fpds_gate_wait_seconds",
		Help:    "Time spent waiting for a gate permit",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
	})
)

// Gate is a counting admission primitive. Safe for concurrent use.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int
}

// New creates a gate with the given capacity. Non-positive values are
// clamped to 1.
func New(capacity int) *Gate {
	if capacity <= 0 {
		capacity = 1
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Capacity returns the number of permits.
func (g *Gate) Capacity() int {
	return g.capacity
}

// Acquire blocks until a permit is available or ctx is done.
// On error no permit is held.
func (g *Gate) Acquire(ctx context.Context) error {
	start := time.Now()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	gateWaitSeconds.Observe(time.Since(start).Seconds())
	gateInFlight.Inc()
	return nil
}

// Release returns a permit, waking the oldest waiter if any.
func (g *Gate) Release() {
	g.sem.Release(1)
	gateInFlight.Dec()
}

// Do runs fn while holding a permit. The permit is released when fn returns,
// including on panic.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}
