package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chaosfan/internal/sim"
)

// Spread is the standard deviation of one angle across the pool: how far
// the fan has opened from its near-identical start.
type Spread struct {
	link int
	last float64
	buf  []float64
}

// NewSpread measures θ1 for link 0 and θ2 for link 1.
func NewSpread(link int) *Spread {
	return &Spread{link: link}
}

func (s *Spread) Name() string { return fmt.Sprintf("spread_theta%d", s.link+1) }

func (s *Spread) Observe(p *sim.Pool) {
	s.buf = s.buf[:0]
	for _, e := range p.All() {
		s.buf = append(s.buf, e.Angles[s.link])
	}
	if len(s.buf) < 2 {
		s.last = 0
		return
	}
	_, s.last = stat.MeanStdDev(s.buf, nil)
}

func (s *Spread) Value() float64 { return s.last }

func (s *Spread) Reset() {
	s.last = 0
}
