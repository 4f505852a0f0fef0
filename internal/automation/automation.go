package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaosfan/internal/analysis"
	"github.com/san-kum/chaosfan/internal/config"
	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/experiment"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/storage"
)

// Scenario defines a scripted sequence of headless runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults), overlays the keys
// under set using the config file field names, and runs for ticks.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Set    yaml.Node `yaml:"set"`
	Ticks  int       `yaml:"ticks"`
	Save   bool      `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &scenario, nil
}

// Config resolves the step's configuration.
func (s *ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p, err := config.GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if !s.Set.IsZero() {
		if err := s.Set.Decode(cfg); err != nil {
			return nil, err
		}
	}
	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order. st may be nil when no step
// saves. A step whose fan goes non-finite is reported in its result and
// does not stop the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]experiment.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		ticks := step.Ticks
		if ticks <= 0 {
			ticks = 1000
		}
		exp := experiment.New(cfg, ticks)
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			exp.Record(st, 1)
		}
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if result != nil {
			results = append(results, *result)
		}
		if err != nil {
			var simErr *dynamo.SimulationError
			if errors.As(err, &simErr) {
				logger.Warn("step went non-finite", "step", i+1, "err", err)
				continue
			}
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
	}

	return results, nil
}

// MonteCarloConfig perturbs the start angles of one pendulum uniformly by
// up to ±Perturbation degrees and estimates the Lyapunov exponent of each
// trial.
type MonteCarloConfig struct {
	Params       physics.Params
	AnglesDeg    [2]float64
	Velocity     float64
	Perturbation float64
	NumTrials    int
	Steps        int
	Dt           float64
	Eps          float64
	Seed         int64
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID   int
	AnglesDeg [2]float64
	Lyapunov  float64
	Chaotic   bool
}

// MonteCarloSummary holds statistics over all trials
type MonteCarloSummary struct {
	Mean, StdDev float64
	ChaoticShare float64
}

// RunMonteCarlo executes trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, MonteCarloSummary, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	eps := cfg.Eps
	if eps <= 0 {
		eps = 1e-8
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, summarise(results), err
		}

		var angles [2]float64
		for i, v := range cfg.AnglesDeg {
			angles[i] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		x0 := dynamo.State{physics.DegToRad(angles[0]), physics.DegToRad(angles[1]), cfg.Velocity, cfg.Velocity}
		lambda, err := analysis.Lyapunov(cfg.Params, x0, cfg.Dt, cfg.Steps, eps)
		if err != nil {
			return results, summarise(results), err
		}

		results = append(results, MonteCarloResult{
			TrialID:   trial,
			AnglesDeg: angles,
			Lyapunov:  lambda,
			Chaotic:   lambda > 0.1,
		})
	}

	return results, summarise(results), nil
}

func summarise(results []MonteCarloResult) MonteCarloSummary {
	if len(results) == 0 {
		return MonteCarloSummary{}
	}
	values := make([]float64, len(results))
	chaotic := 0
	for i, r := range results {
		values[i] = r.Lyapunov
		if r.Chaotic {
			chaotic++
		}
	}
	s := MonteCarloSummary{ChaoticShare: float64(chaotic) / float64(len(results))}
	if len(values) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	} else {
		s.Mean = values[0]
	}
	return s
}
