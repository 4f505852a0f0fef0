package analysis

import (
	"strings"

	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/physics"
)

type Point struct{ X, Y float64 }

// Portrait is a set of points in a two-variable projection of the state.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

// Phase integrates p from x0 for steps and records (x[link], x[link+2]),
// that is (θ, ω) of the chosen link.
func Phase(p physics.Params, x0 dynamo.State, link int, dt float64, steps int) *Portrait {
	if link < 0 || link > 1 || len(x0) != 4 {
		return nil
	}

	portrait := &Portrait{
		XIndex: link,
		YIndex: link + 2,
		Points: make([]Point, 0, steps),
	}

	dyn := &physics.DoublePendulum{Params: p}
	integ := integrators.NewRK4()
	x := x0.Clone()

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dt)
		portrait.Points = append(portrait.Points, Point{X: x[portrait.XIndex], Y: x[portrait.YIndex]})
	}

	return portrait
}

// Poincare records (θ2, ω2) each time θ1 crosses zero going upward.
func Poincare(p physics.Params, x0 dynamo.State, dt float64, steps int) *Portrait {
	if len(x0) != 4 {
		return nil
	}

	section := &Portrait{XIndex: 1, YIndex: 3}

	dyn := &physics.DoublePendulum{Params: p}
	integ := integrators.NewRK4()
	x := x0.Clone()
	prev := x[0]

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dt)
		if prev < 0 && x[0] >= 0 {
			section.Points = append(section.Points, Point{X: x[1], Y: x[3]})
		}
		prev = x[0]
	}

	return section
}

// ASCII plots the portrait on a width×height character grid with axes
// drawn where zero is in range.
func (portrait *Portrait) ASCII(width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
