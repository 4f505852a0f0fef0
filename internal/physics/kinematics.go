package physics

import "math"

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Positions returns both bob positions for a pivot at origin.
//
//	bob1 = origin + l1·(sin θ1, cos θ1)
//	bob2 = bob1 + l2·(sin θ2, cos θ2)
func Positions(origin Vec2, theta, lengths [2]float64) (bob1, bob2 Vec2) {
	bob1 = Vec2{
		X: origin.X + lengths[0]*math.Sin(theta[0]),
		Y: origin.Y + lengths[0]*math.Cos(theta[0]),
	}
	bob2 = Vec2{
		X: bob1.X + lengths[1]*math.Sin(theta[1]),
		Y: bob1.Y + lengths[1]*math.Cos(theta[1]),
	}
	return bob1, bob2
}

func DegToRad(deg float64) float64 { return deg * (math.Pi / 180) }

func RadToDeg(rad float64) float64 { return rad * (180 / math.Pi) }
