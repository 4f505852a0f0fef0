// Package palette maps a pendulum's colour index in [0, 1) to a hex colour
// for a named scheme.
package palette

import (
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type scheme func(t float64) colorful.Color

var schemes = map[string]scheme{
	"rainbow": rainbow,
	"sinebow": sinebow,
	"cool":    table("#6e40aa", "#6054c8", "#4c6edb", "#368ce1", "#23abd8", "#1ac7c2", "#1ddfa3", "#30ef82", "#52f667", "#7ff658", "#aff05b"),
	"turbo":   table("#23171b", "#4a58dd", "#2f9df5", "#27d7c4", "#4df884", "#95fb51", "#dedd32", "#ffa423", "#f65f18", "#ba2208", "#900c00"),
	"viridis": table("#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"),
	"magma":   table("#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f", "#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf"),
	"cividis": table("#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#fee838"),
}

// Colour returns the hex colour for t in scheme. Unknown schemes fall back
// to rainbow; t is wrapped into [0, 1).
func Colour(name string, t float64) string {
	s, ok := schemes[name]
	if !ok {
		s = rainbow
	}
	t = t - math.Floor(t)
	return s(t).Clamped().Hex()
}

func Has(name string) bool {
	_, ok := schemes[name]
	return ok
}

func Names() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the scheme after name in Names order, wrapping around.
func Next(name string) string {
	names := Names()
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func rainbow(t float64) colorful.Color {
	return colorful.Hsv(360*t, 0.85, 1)
}

func sinebow(t float64) colorful.Color {
	t = 0.5 - t
	sq := func(x float64) float64 {
		s := math.Sin(math.Pi * x)
		return s * s
	}
	return colorful.Color{R: sq(t), G: sq(t + 1.0/3), B: sq(t + 2.0/3)}
}

type stop struct {
	col colorful.Color
	pos float64
}

// table builds an evenly spaced gradient blended in Luv space.
func table(hexes ...string) scheme {
	stops := make([]stop, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("palette: bad colour " + h)
		}
		stops[i] = stop{col: c, pos: float64(i) / float64(len(hexes)-1)}
	}
	return func(t float64) colorful.Color {
		for i := 0; i < len(stops)-1; i++ {
			a, b := stops[i], stops[i+1]
			if t == a.pos {
				return a.col
			}
			if a.pos < t && t <= b.pos {
				return a.col.BlendLuv(b.col, (t-a.pos)/(b.pos-a.pos))
			}
		}
		return stops[len(stops)-1].col
	}
}
