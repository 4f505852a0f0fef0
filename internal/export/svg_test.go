package export

import (
	"strings"
	"testing"

	"github.com/san-kum/chaosfan/internal/analysis"
	"github.com/san-kum/chaosfan/internal/palette"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

func tickedPool(n, ticks int) *sim.Pool {
	pool := sim.NewPool(n, sim.DefaultDefaults())
	pool.SetRunning(true)
	for i := 0; i < ticks; i++ {
		pool.Tick(physics.Vec2{})
	}
	return pool
}

func TestTracesSVG(t *testing.T) {
	pool := tickedPool(4, 5)
	svg := TracesSVG(pool, 400, 300, "viridis")

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete svg document")
	}
	if got := strings.Count(svg, "<polyline"); got != 4 {
		t.Errorf("expected 4 polylines, got %d", got)
	}
	if !strings.Contains(svg, palette.Colour("viridis", 0)) {
		t.Error("expected first pendulum colour in output")
	}
}

func TestTracesSVGSkipsShortTraces(t *testing.T) {
	pool := tickedPool(3, 1)
	if got := strings.Count(TracesSVG(pool, 100, 100, "rainbow"), "<polyline"); got != 0 {
		t.Errorf("single-point traces should be skipped, got %d polylines", got)
	}
}

func TestCanvasToSVG(t *testing.T) {
	pool := tickedPool(2, 3)
	c := PoolCanvas(pool, 20, 10, "rainbow")
	svg := CanvasToSVG(c, 2)

	if !strings.Contains(svg, "<circle") {
		t.Error("expected dots")
	}
	if strings.Contains(svg, `fill="#00ff00"`) {
		t.Error("every drawn cell should carry a palette colour")
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should render empty")
	}
}

func TestPortraitSVG(t *testing.T) {
	pts := []analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	svg := PortraitSVG(pts, 100, 50, "#ff00ff")
	if !strings.Contains(svg, `stroke="#ff00ff"`) || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path: %s", svg)
	}
	if PortraitSVG(pts[:1], 10, 10, "#fff") != "" {
		t.Error("single point should render empty")
	}
}
