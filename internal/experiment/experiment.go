// Package experiment runs a configured fan headlessly for a fixed number
// of ticks, observing metrics and optionally recording frames.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/chaosfan/internal/config"
	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/metrics"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
	"github.com/san-kum/chaosfan/internal/storage"
)

type Result struct {
	Ticks   int
	Steps   int
	Elapsed time.Duration
	Metrics map[string]float64
	// RunID is set when frames were recorded.
	RunID string
}

type Experiment struct {
	cfg     *config.Config
	ticks   int
	store   *storage.Store
	every   int
	metrics []metrics.Metric
	pool    *sim.Pool
	origin  physics.Vec2
}

func New(cfg *config.Config, ticks int) *Experiment {
	return &Experiment{cfg: cfg, ticks: ticks, every: 1}
}

// Record saves one frame every n ticks to st.
func (e *Experiment) Record(st *storage.Store, every int) *Experiment {
	e.store = st
	e.every = max(1, every)
	return e
}

// Setup builds the pool and attaches ms, or metrics.Defaults when ms is
// empty.
func (e *Experiment) Setup(ms ...metrics.Metric) error {
	pool, err := e.cfg.NewPool()
	if err != nil {
		return err
	}
	pool.SetRunning(true)
	e.pool = pool

	if len(ms) == 0 {
		ms = metrics.Defaults()
	}
	e.metrics = ms
	return nil
}

// Pool returns the pool built by Setup.
func (e *Experiment) Pool() *sim.Pool { return e.pool }

// Run ticks the pool. Cancelling ctx stops early without error. If any
// pendulum ends with a non-finite state the result is returned together
// with a *dynamo.SimulationError.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.pool == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	var rec *storage.Recorder
	var meta *storage.RunMetadata
	if e.store != nil {
		if err := e.store.Init(); err != nil {
			return nil, err
		}
		meta = storage.MetadataFor(e.pool, e.cfg.Integrator)
		var err error
		if rec, err = e.store.Create(meta); err != nil {
			return nil, err
		}
		if err := rec.Write(storage.Snapshot(0, e.pool, e.origin)); err != nil {
			rec.Close()
			return nil, err
		}
	}

	for _, m := range e.metrics {
		m.Observe(e.pool)
	}

	var writeErr error
	start := time.Now()
	runErr := e.pool.Run(ctx, e.ticks, e.origin, func(p *sim.Pool) {
		for _, m := range e.metrics {
			m.Observe(p)
		}
		if rec != nil && writeErr == nil && p.Frames()%e.every == 0 {
			writeErr = rec.Write(storage.Snapshot(p.Frames(), p, e.origin))
		}
	})

	result := &Result{
		Ticks:   e.pool.Frames(),
		Steps:   e.pool.Steps(),
		Elapsed: time.Since(start),
		Metrics: metrics.Collect(e.metrics),
	}

	if rec != nil {
		meta.Ticks = result.Ticks
		meta.Metrics = result.Metrics
		if err := rec.Close(); err != nil && writeErr == nil {
			writeErr = err
		}
		result.RunID = rec.ID()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return result, runErr
	}
	if writeErr != nil {
		return result, writeErr
	}

	if idx := e.pool.FirstInvalid(); idx >= 0 {
		return result, &dynamo.SimulationError{
			Step:    e.pool.Steps(),
			Index:   idx,
			State:   e.pool.At(idx).State(),
			Wrapped: dynamo.ErrInvalidState,
		}
	}
	return result, nil
}
