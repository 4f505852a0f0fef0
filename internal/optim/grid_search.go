// Package optim sweeps fan parameters over a grid and keeps the setting
// that minimises a metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/chaosfan/internal/config"
	"github.com/san-kum/chaosfan/internal/experiment"
)

// Setters maps sweepable parameter names onto config fields.
var Setters = map[string]func(c *config.Config, v float64){
	"gravity":  func(c *config.Config, v float64) { c.Gravity = v },
	"length":   func(c *config.Config, v float64) { c.Length = v },
	"mass":     func(c *config.Config, v float64) { c.Mass = v },
	"dt":       func(c *config.Config, v float64) { c.Dt = v },
	"velocity": func(c *config.Config, v float64) { c.Velocity = v },
	"theta1":   func(c *config.Config, v float64) { c.Angles[0] = v },
	"theta2":   func(c *config.Config, v float64) { c.Angles[1] = v },
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for _, name := range params {
		if _, ok := Setters[name]; !ok {
			return nil, fmt.Errorf("optim: unknown parameter %q", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs base with every grid point applied, ticks ticks each, and
// returns the point with the smallest metricName together with every
// trial in grid order. Failed trials are kept with their error and never
// win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, ticks int, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		val, err := g.evaluate(ctx, base, params, ticks, metricName)
		trials = append(trials, Trial{Params: params, Value: val, Err: err})
		if err == nil && val < best {
			best = val
			bestParams = params
		}
	})

	if err := ctx.Err(); err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("optim: no successful trial for %s", metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, ticks int, metricName string) (float64, error) {
	cfg := *base
	for name, v := range params {
		Setters[name](&cfg, v)
	}
	cfg.Clamp()

	exp := experiment.New(&cfg, ticks)
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("optim: unknown metric %q", metricName)
	}
	return val, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		visit(current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, visit)
	}
}

// Names lists the sweepable parameters.
func Names() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
