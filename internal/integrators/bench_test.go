package integrators

import (
	"testing"

	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/physics"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := physics.NewDoublePendulum()
	x := dynamo.State{1.5, -0.3, 0, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0.02)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := physics.NewDoublePendulum()
	x := dynamo.State{1.5, -0.3, 0, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0.02)
	}
}
