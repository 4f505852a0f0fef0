package pendulum

import "github.com/san-kum/chaosfan/internal/physics"

// Trace is the lower bob's recent path, oldest first.
type Trace struct {
	points []physics.Vec2
}

// Push appends p and drops the oldest points so at most limit remain.
func (t *Trace) Push(p physics.Vec2, limit int) {
	t.points = append(t.points, p)
	t.Trim(limit)
}

// Trim drops the oldest points until at most limit remain.
func (t *Trace) Trim(limit int) {
	if limit < 0 {
		limit = 0
	}
	if over := len(t.points) - limit; over > 0 {
		n := copy(t.points, t.points[over:])
		t.points = t.points[:n]
	}
}

func (t *Trace) Len() int { return len(t.points) }

// Points returns a copy of the trace, oldest first.
func (t *Trace) Points() []physics.Vec2 {
	out := make([]physics.Vec2, len(t.points))
	copy(out, t.points)
	return out
}

// Last returns the most recent point.
func (t *Trace) Last() (physics.Vec2, bool) {
	if len(t.points) == 0 {
		return physics.Vec2{}, false
	}
	return t.points[len(t.points)-1], true
}

func (t *Trace) Clear() { t.points = t.points[:0] }
