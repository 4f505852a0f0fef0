package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

var origin = physics.Vec2{X: 640, Y: 260}

func snapshot(p *sim.Pool) [][4]float64 {
	out := make([][4]float64, p.Len())
	for i, e := range p.All() {
		out[i] = [4]float64{e.Angles[0], e.Angles[1], e.Velocities[0], e.Velocities[1]}
	}
	return out
}

var _ = Describe("Pool", func() {
	var pool *sim.Pool

	BeforeEach(func() {
		pool = sim.NewPool(8, sim.DefaultDefaults())
	})

	Describe("construction", func() {
		It("offsets each entry's angles by its index", func() {
			Expect(pool.Len()).To(Equal(8))
			for i, e := range pool.All() {
				Expect(e.Angles[0]).To(BeNumerically("~", physics.DegToRad(90)+float64(i)/1000, 1e-15))
				Expect(e.Angles[1]).To(BeNumerically("~", physics.DegToRad(-20)-float64(i)/1000, 1e-15))
				Expect(e.Velocities).To(Equal([2]float64{0.3, 0.3}))
				Expect(e.ColorIndex).To(BeNumerically("~", float64(i)/8, 1e-15))
			}
		})

		It("starts paused", func() {
			Expect(pool.Running()).To(BeFalse())
		})
	})

	Describe("Step", func() {
		It("advances every entry exactly once", func() {
			ref := sim.NewPool(8, sim.DefaultDefaults())
			rk := integrators.NewRK4()
			pool.Step()
			for i, e := range ref.All() {
				e.Update(rk)
				Expect(pool.At(i).Angles).To(Equal(e.Angles))
				Expect(pool.At(i).Velocities).To(Equal(e.Velocities))
			}
			Expect(pool.Steps()).To(Equal(1))
		})

		It("is deterministic across runs", func() {
			other := sim.NewPool(8, sim.DefaultDefaults())
			for i := 0; i < 500; i++ {
				pool.Step()
				other.Step()
			}
			Expect(snapshot(pool)).To(Equal(snapshot(other)))
		})

		It("integrates entries independently", func() {
			solo := sim.NewPool(1, sim.DefaultDefaults())
			for i := 0; i < 200; i++ {
				pool.Step()
				solo.Step()
			}
			Expect(pool.At(0).Angles).To(Equal(solo.At(0).Angles))
		})

		It("keeps a pool at rest at the stable equilibrium", func() {
			d := sim.DefaultDefaults()
			d.AnglesDeg = [2]float64{0, 0}
			d.Velocity = 0
			rest := sim.NewPool(1, d)
			for i := 0; i < 300; i++ {
				rest.Step()
			}
			Expect(rest.At(0).Angles).To(Equal([2]float64{0, 0}))
			Expect(rest.At(0).Velocities).To(Equal([2]float64{0, 0}))
		})
	})

	Describe("Tick", func() {
		It("skips physics while paused but still records the trace", func() {
			before := snapshot(pool)
			Expect(pool.Tick(origin)).To(BeFalse())
			Expect(snapshot(pool)).To(Equal(before))
			Expect(pool.At(0).Trace().Len()).To(Equal(1))
			Expect(pool.Frames()).To(Equal(1))
		})

		It("steps then records while running", func() {
			pool.SetRunning(true)
			Expect(pool.Tick(origin)).To(BeTrue())
			last, ok := pool.At(3).Trace().Last()
			Expect(ok).To(BeTrue())
			Expect(last).To(Equal(pool.At(3).Position(origin)))
		})

		It("never lets a trace exceed its cap", func() {
			pool.Apply(sim.Options{TraceCap: sim.Int(10)})
			pool.SetRunning(true)
			for i := 0; i < 37; i++ {
				pool.Tick(origin)
				for _, e := range pool.All() {
					Expect(e.Trace().Len()).To(BeNumerically("<=", 10))
				}
			}
			Expect(pool.At(0).Trace().Len()).To(Equal(10))
		})
	})

	Describe("Run", func() {
		It("stops on a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := pool.Run(ctx, 100, origin, nil)
			Expect(err).To(MatchError(context.Canceled))
			Expect(pool.Frames()).To(Equal(0))
		})

		It("calls back once per tick", func() {
			calls := 0
			pool.SetRunning(true)
			Expect(pool.Run(context.Background(), 25, origin, func(*sim.Pool) { calls++ })).To(Succeed())
			Expect(calls).To(Equal(25))
			Expect(pool.Steps()).To(Equal(25))
		})
	})

	Describe("Resize", func() {
		It("is idempotent", func() {
			pool.Resize(12)
			first := snapshot(pool)
			pool.Resize(12)
			Expect(pool.Len()).To(Equal(12))
			Expect(snapshot(pool)).To(Equal(first))
		})

		It("truncates from the tail without reordering", func() {
			pool.SetRunning(true)
			pool.Tick(origin)
			kept := snapshot(pool)[:3]
			head := pool.At(0)
			pool.Resize(3)
			Expect(pool.Len()).To(Equal(3))
			Expect(snapshot(pool)).To(Equal(kept))
			Expect(pool.At(0)).To(BeIdenticalTo(head))
		})

		It("appends fresh entries using the current defaults", func() {
			pool.Apply(sim.Options{Gravity: sim.Float(3.7)})
			pool.Resize(10)
			Expect(pool.At(9).Gravity).To(Equal(3.7))
			Expect(pool.At(9).Angles[0]).To(BeNumerically("~", physics.DegToRad(90)+0.009, 1e-15))
			Expect(pool.At(9).Trace().Len()).To(BeZero())
		})

		It("rebuilds deterministic offsets after emptying", func() {
			pool.SetRunning(true)
			pool.Tick(origin)
			pool.Resize(0)
			Expect(pool.Len()).To(BeZero())
			pool.Resize(5)
			Expect(pool.Len()).To(Equal(5))
			for i, e := range pool.All() {
				Expect(e.Angles[0]).To(BeNumerically("~", physics.DegToRad(90)+float64(i)/1000, 1e-15))
				Expect(e.Angles[1]).To(BeNumerically("~", physics.DegToRad(-20)-float64(i)/1000, 1e-15))
				Expect(e.ColorIndex).To(BeNumerically("~", float64(i)/5, 1e-15))
				Expect(e.Trace().Len()).To(BeZero())
			}
		})

		It("treats negative sizes as zero", func() {
			pool.Resize(-3)
			Expect(pool.Len()).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("rebuilds the same number of entries from the new angles", func() {
			pool.SetRunning(true)
			for i := 0; i < 20; i++ {
				pool.Tick(origin)
			}
			pool.Reset([2]float64{45, 10})
			Expect(pool.Len()).To(Equal(8))
			Expect(pool.Steps()).To(BeZero())
			Expect(pool.Defaults().AnglesDeg).To(Equal([2]float64{45, 10}))
			for i, e := range pool.All() {
				Expect(e.Angles[0]).To(BeNumerically("~", physics.DegToRad(45)+float64(i)/1000, 1e-15))
				Expect(e.Angles[1]).To(BeNumerically("~", physics.DegToRad(10)-float64(i)/1000, 1e-15))
				Expect(e.Trace().Len()).To(BeZero())
			}
		})

		It("keeps the running flag", func() {
			pool.SetRunning(true)
			pool.Reset([2]float64{90, -20})
			Expect(pool.Running()).To(BeTrue())
		})
	})

	Describe("Apply", func() {
		It("broadcasts only the fields present", func() {
			pool.Apply(sim.Options{Length: sim.Float(150), Damping: sim.Bool(true)})
			for _, e := range pool.All() {
				Expect(e.Lengths).To(Equal([2]float64{150, 150}))
				Expect(e.Damping).To(BeTrue())
				Expect(e.Masses).To(Equal([2]float64{1, 1}))
				Expect(e.Gravity).To(Equal(9.81))
				Expect(e.Dt).To(Equal(0.02))
			}
		})

		It("sets masses, dt, velocity and visibility flags", func() {
			pool.Apply(sim.Options{
				Mass:      sim.Float(2),
				Dt:        sim.Float(0.01),
				Velocity:  sim.Float(-1),
				ShowArms:  sim.Bool(false),
				ShowTrace: sim.Bool(false),
			})
			for _, e := range pool.All() {
				Expect(e.Masses).To(Equal([2]float64{2, 2}))
				Expect(e.Dt).To(Equal(0.01))
				Expect(e.Velocities).To(Equal([2]float64{-1, -1}))
				Expect(e.ShowArms).To(BeFalse())
				Expect(e.ShowTrace).To(BeFalse())
			}
			Expect(pool.Defaults().Velocity).To(Equal(-1.0))
		})

		It("makes gravity reach the integrator", func() {
			other := sim.NewPool(1, sim.DefaultDefaults())
			one := sim.NewPool(1, sim.DefaultDefaults())
			one.Apply(sim.Options{Gravity: sim.Float(50)})
			one.Step()
			other.Step()
			Expect(one.At(0).Velocities[0]).NotTo(Equal(other.At(0).Velocities[0]))
		})

		It("trims existing traces when the cap shrinks", func() {
			for i := 0; i < 30; i++ {
				pool.Tick(origin)
			}
			pool.Apply(sim.Options{TraceCap: sim.Int(4)})
			Expect(pool.At(0).Trace().Len()).To(Equal(4))
		})

		It("is a no-op for empty options", func() {
			before := snapshot(pool)
			pool.Apply(sim.Options{})
			Expect(snapshot(pool)).To(Equal(before))
		})
	})

	Describe("energy", func() {
		It("stays bounded without damping", func() {
			e0 := pool.Energy()
			for i := 0; i < 1000; i++ {
				pool.Step()
			}
			Expect(math.Abs(pool.Energy()-e0) / math.Abs(e0)).To(BeNumerically("<", 1e-6))
		})

		It("reports degenerate entries", func() {
			Expect(pool.FirstInvalid()).To(Equal(-1))
			pool.At(2).Masses = [2]float64{0, 1}
			pool.At(2).Angles = [2]float64{0.4, 0.4}
			pool.Step()
			Expect(pool.FirstInvalid()).To(Equal(2))
		})
	})
})
