package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/chaosfan/internal/analysis"
	"github.com/san-kum/chaosfan/internal/palette"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
	"github.com/san-kum/chaosfan/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// TracesSVG draws one polyline per pendulum trace, coloured from scheme,
// with the pivot centred and the full arm reach fitting the shorter side.
// Pendulums with a non-finite state or fewer than two trace points are
// skipped.
func TracesSVG(p *sim.Pool, width, height int, scheme string) string {
	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	d := p.Defaults()
	reach := d.Lengths[0] + d.Lengths[1]
	cx, cy := float64(width)/2, float64(height)/2
	scale := 1.0
	if reach > 0 {
		scale = 0.95 * min(cx, cy) / reach
	}

	for _, e := range p.All() {
		if !e.Valid() {
			continue
		}
		pts := e.Trace().Points()
		if len(pts) < 2 {
			continue
		}

		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1" points="`, palette.Colour(scheme, e.ColorIndex)))
		for i, pt := range pts {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", cx+pt.X*scale, cy+pt.Y*scale))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG dots, keeping each cell's
// colour.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	header(&sb, width, height)

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := canvas.Colors[row][col]
			if fill == "" {
				fill = "#00ff00"
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						x := baseX + float64(dx)*scale + scale/2
						y := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PortraitSVG draws a phase portrait as a single path, y up.
func PortraitSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// PoolCanvas draws the pool onto a fresh braille canvas of w×h cells.
func PoolCanvas(p *sim.Pool, w, h int, scheme string) *viz.Canvas {
	c := viz.NewCanvas(w, h)
	viz.DrawPool(c, p, physics.Vec2{}, scheme)
	return c
}
