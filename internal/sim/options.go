package sim

// Options is a batch parameter change. Only non-nil fields are applied, to
// every pendulum and to the pool defaults used for later growth.
type Options struct {
	Gravity   *float64
	Length    *float64
	Mass      *float64
	Dt        *float64
	Velocity  *float64
	Damping   *bool
	TraceCap  *int
	ShowArms  *bool
	ShowTrace *bool
}

func Float(v float64) *float64 { return &v }
func Bool(v bool) *bool        { return &v }
func Int(v int) *int           { return &v }

func (o Options) empty() bool {
	return o.Gravity == nil && o.Length == nil && o.Mass == nil && o.Dt == nil &&
		o.Velocity == nil && o.Damping == nil && o.TraceCap == nil &&
		o.ShowArms == nil && o.ShowTrace == nil
}
