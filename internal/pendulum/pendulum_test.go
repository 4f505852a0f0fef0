package pendulum

import (
	"math"
	"testing"

	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/physics"
)

func goldenPendulum() *Pendulum {
	s := DefaultSettings()
	s.Dt = 0.02
	angles := [2]float64{physics.DegToRad(90), physics.DegToRad(-20)}
	return New(angles, [2]float64{0, 0}, 0, s)
}

func TestUpdateGoldenOneStep(t *testing.T) {
	p := goldenPendulum()
	p.Update(integrators.NewRK4())

	want := [4]float64{
		1.5707865168031092,
		-0.34906585035084081,
		-0.00098099835746442402,
		9.6050090711722133e-09,
	}
	got := [4]float64{p.Angles[0], p.Angles[1], p.Velocities[0], p.Velocities[1]}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("component %d: got %.17g, want %.17g", i, got[i], want[i])
		}
	}
}

func TestUpdateGoldenHundredSteps(t *testing.T) {
	p := goldenPendulum()
	rk := integrators.NewRK4()
	for i := 0; i < 100; i++ {
		p.Update(rk)
	}

	want := [4]float64{
		1.4734481143736042,
		-0.34430637024057442,
		-0.096670732444936347,
		0.0094773486688035369,
	}
	got := [4]float64{p.Angles[0], p.Angles[1], p.Velocities[0], p.Velocities[1]}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("component %d: got %.17g, want %.17g", i, got[i], want[i])
		}
	}
}

func TestUpdateDampedOneStep(t *testing.T) {
	p := goldenPendulum()
	p.Damping = true
	p.Update(integrators.NewRK4())

	if math.Abs(p.Velocities[0]-(-0.00098001735910695957)) > 1e-12 {
		t.Errorf("damped omega1 = %.17g", p.Velocities[0])
	}
	if math.Abs(p.Angles[0]-1.5707865168031092) > 1e-9 {
		t.Errorf("damping must not touch angles, got %.17g", p.Angles[0])
	}
}

func TestUpdateDeterministic(t *testing.T) {
	run := func() [4]float64 {
		p := New([2]float64{2.0, -1.0}, [2]float64{0.3, 0.3}, 0, DefaultSettings())
		rk := integrators.NewRK4()
		for i := 0; i < 2000; i++ {
			p.Update(rk)
		}
		return [4]float64{p.Angles[0], p.Angles[1], p.Velocities[0], p.Velocities[1]}
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("trajectories differ: %v vs %v", a, b)
	}
}

func TestUpdateRestStaysAtRest(t *testing.T) {
	p := New([2]float64{0, 0}, [2]float64{0, 0}, 0, DefaultSettings())
	rk := integrators.NewRK4()
	for i := 0; i < 1000; i++ {
		p.Update(rk)
	}

	if p.Angles != [2]float64{0, 0} || p.Velocities != [2]float64{0, 0} {
		t.Errorf("expected rest, got angles %v velocities %v", p.Angles, p.Velocities)
	}
}

func TestSmallAngleNormalMode(t *testing.T) {
	// Slow mode shape for equal links: θ2 = √2·θ1.
	s := DefaultSettings()
	s.Lengths = [2]float64{1, 1}
	s.Dt = 0.001
	amp := 0.01
	p := New([2]float64{amp, math.Sqrt2 * amp}, [2]float64{0, 0}, 0, s)
	rk := integrators.NewRK4()

	slow, _ := physics.NormalModes(s.Gravity, 1)
	period := 2 * math.Pi / slow

	// Time between the first two downward zero crossings of θ1 is one period.
	var crossings []float64
	prev := p.Angles[0]
	for i := 1; len(crossings) < 2 && i < 20000; i++ {
		p.Update(rk)
		cur := p.Angles[0]
		if prev > 0 && cur <= 0 {
			frac := prev / (prev - cur)
			crossings = append(crossings, (float64(i-1)+frac)*s.Dt)
		}
		prev = cur
	}

	if len(crossings) < 2 {
		t.Fatalf("expected two zero crossings, got %d", len(crossings))
	}
	measured := crossings[1] - crossings[0]
	if math.Abs(measured-period)/period > 0.01 {
		t.Errorf("measured period %.5f, expected %.5f", measured, period)
	}
}

func TestEnergyBoundWithoutDamping(t *testing.T) {
	p := goldenPendulum()
	rk := integrators.NewRK4()
	e0 := p.Energy()

	maxDrift := 0.0
	for i := 0; i < 5000; i++ {
		p.Update(rk)
		drift := math.Abs(p.Energy()-e0) / math.Abs(e0)
		maxDrift = math.Max(maxDrift, drift)
	}

	if maxDrift > 1e-6 {
		t.Errorf("energy drift %g exceeds bound", maxDrift)
	}
}

func TestEnergyNonIncreasingWithDamping(t *testing.T) {
	s := DefaultSettings()
	s.Lengths = [2]float64{1, 1}
	s.Dt = 0.005
	s.Damping = true
	p := New([2]float64{1.2, -0.6}, [2]float64{0, 0}, 0, s)
	rk := integrators.NewRK4()

	prev := p.Energy()
	for i := 0; i < 4000; i++ {
		p.Update(rk)
		e := p.Energy()
		// Allow for RK4 truncation error on a single step.
		if e > prev+1e-9 {
			t.Fatalf("step %d: energy rose from %.12f to %.12f", i, prev, e)
		}
		prev = e
	}
}

func TestValidDetectsDegenerateMass(t *testing.T) {
	s := DefaultSettings()
	s.Masses = [2]float64{0, 1}
	p := New([2]float64{0.3, 0.3}, [2]float64{0, 0}, 0, s)

	if !p.Valid() {
		t.Fatal("fresh pendulum should be valid")
	}
	p.Update(integrators.NewRK4())
	if p.Valid() {
		t.Errorf("expected non-finite state, got %v", p.State())
	}
}

func TestRecordBoundsTrace(t *testing.T) {
	p := goldenPendulum()
	p.MaxTraceLength = 5
	origin := physics.Vec2{X: 500, Y: 300}
	rk := integrators.NewRK4()

	var recorded []physics.Vec2
	for i := 0; i < 12; i++ {
		p.Update(rk)
		recorded = append(recorded, p.Record(origin))
		if p.Trace().Len() > p.MaxTraceLength {
			t.Fatalf("trace length %d exceeds cap %d", p.Trace().Len(), p.MaxTraceLength)
		}
	}

	points := p.Trace().Points()
	want := recorded[len(recorded)-5:]
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, points[i], want[i])
		}
	}
	if last, _ := p.Trace().Last(); last != p.Position(origin) {
		t.Errorf("last trace point %v is not the current position", last)
	}
}

func TestRecordZeroCap(t *testing.T) {
	p := goldenPendulum()
	p.MaxTraceLength = 0
	p.Record(physics.Vec2{})
	if p.Trace().Len() != 0 {
		t.Errorf("expected empty trace, got %d", p.Trace().Len())
	}
}

func TestPositionMatchesKinematics(t *testing.T) {
	p := goldenPendulum()
	origin := physics.Vec2{X: 10, Y: 20}
	pos := p.Position(origin)

	x := origin.X + 200*math.Sin(p.Angles[0]) + 200*math.Sin(p.Angles[1])
	y := origin.Y + 200*math.Cos(p.Angles[0]) + 200*math.Cos(p.Angles[1])
	if math.Abs(pos.X-x) > 1e-9 || math.Abs(pos.Y-y) > 1e-9 {
		t.Errorf("position %v, want (%f, %f)", pos, x, y)
	}
}
