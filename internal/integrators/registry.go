package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/chaosfan/internal/dynamo"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

var registry = map[string]func() dynamo.Integrator{
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"euler": func() dynamo.Integrator { return NewEuler() },
}

// New returns a fresh integrator by name. Integrators hold scratch state,
// so every pool gets its own.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
