package metrics

import "github.com/san-kum/chaosfan/internal/sim"

// Stability is the fraction of observations in which every pendulum had a
// finite state.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{name: "stability"}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(p *sim.Pool) {
	s.samples++
	if p.FirstInvalid() >= 0 {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
