package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

func TestEnergyDriftBounded(t *testing.T) {
	pool := sim.NewPool(4, sim.DefaultDefaults())
	m := NewEnergyDrift()

	m.Observe(pool)
	if m.Value() != 0 {
		t.Errorf("expected zero drift on first sample, got %g", m.Value())
	}

	for i := 0; i < 500; i++ {
		pool.Step()
		m.Observe(pool)
	}
	if m.Value() > 1e-6 {
		t.Errorf("energy drift %g too large", m.Value())
	}
	if m.Current() != pool.Energy() {
		t.Errorf("current energy %f, pool energy %f", m.Current(), pool.Energy())
	}

	m.Reset()
	if m.Value() != 0 || m.Current() != 0 {
		t.Error("expected reset drift")
	}
}

func TestSpreadOfOffsets(t *testing.T) {
	pool := sim.NewPool(5, sim.DefaultDefaults())
	m := NewSpread(0)
	m.Observe(pool)

	// θ1 = base + i/1000 for i in 0..4: sample std of {0..4}/1000.
	want := math.Sqrt(2.5) / 1000
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("spread = %.15f, want %.15f", m.Value(), want)
	}
	if m.Name() != "spread_theta1" {
		t.Errorf("unexpected name %s", m.Name())
	}
}

func TestSpreadSinglePendulum(t *testing.T) {
	pool := sim.NewPool(1, sim.DefaultDefaults())
	m := NewSpread(1)
	m.Observe(pool)
	if m.Value() != 0 {
		t.Errorf("expected zero spread, got %g", m.Value())
	}
}

func TestStability(t *testing.T) {
	pool := sim.NewPool(3, sim.DefaultDefaults())
	m := NewStability()

	m.Observe(pool)
	pool.At(1).Masses = [2]float64{0, 1}
	pool.At(1).Angles = [2]float64{physics.DegToRad(10), physics.DegToRad(10)}
	pool.Step()
	m.Observe(pool)

	if m.Value() != 0.5 {
		t.Errorf("stability = %f, want 0.5", m.Value())
	}
}

func TestCollect(t *testing.T) {
	ms := Defaults()
	pool := sim.NewPool(2, sim.DefaultDefaults())
	for _, m := range ms {
		m.Observe(pool)
	}
	vals := Collect(ms)
	for _, key := range []string{"energy_drift", "spread_theta1", "stability"} {
		if _, ok := vals[key]; !ok {
			t.Errorf("missing metric %s", key)
		}
	}
}
