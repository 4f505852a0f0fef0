package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfan/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	profileArg string
	logJSON    bool
	logLevel   string

	// config overrides
	count       int
	theta1      float64
	theta2      float64
	velocity    float64
	mass        float64
	length      float64
	gravity     float64
	dt          float64
	damping     bool
	traceLength int
	scheme      string
	frameRate   int
	integrator  string

	prof interface{ Stop() }
)

// main registers commands and flags, launches the live view when no
// subcommand is given, and exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "chaosfan",
		Short:             "a fan of nearly identical double pendulums",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if prof != nil {
				prof.Stop()
			}
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".chaosfan", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&profileArg, "profile", "", "write a cpu or mem profile")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	pf.IntVar(&count, "count", config.DefaultCount, "number of pendulums")
	pf.Float64Var(&theta1, "theta1", 90, "initial upper angle in degrees")
	pf.Float64Var(&theta2, "theta2", -20, "initial lower angle in degrees")
	pf.Float64Var(&velocity, "velocity", config.DefaultVelocity, "initial angular velocity of both links")
	pf.Float64Var(&mass, "mass", 1, "mass of each bob")
	pf.Float64Var(&length, "length", 200, "length of each link")
	pf.Float64Var(&gravity, "gravity", 9.81, "gravitational acceleration")
	pf.Float64Var(&dt, "dt", 0.02, "timestep")
	pf.BoolVar(&damping, "damping", false, "scale velocities by 0.999 every step")
	pf.IntVar(&traceLength, "trace", config.DefaultTraceLength, "trace capacity per pendulum")
	pf.StringVar(&scheme, "scheme", config.DefaultScheme, "colour scheme")
	pf.IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, euler)")

	rootCmd.AddCommand(
		liveCmd(),
		runCmd(),
		listCmd(),
		plotCmd(),
		svgCmd(),
		lyapunovCmd(),
		phaseCmd(),
		modesCmd(),
		compareCmd(),
		sweepCmd(),
		scenarioCmd(),
		monteCarloCmd(),
		presetsCmd(),
		initConfigCmd(),
		serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	switch strings.ToLower(profileArg) {
	case "":
	case "cpu":
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		prof = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		return fmt.Errorf("invalid --profile %q (want cpu or mem)", profileArg)
	}
	return nil
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("theta1") {
		cfg.Angles[0] = theta1
	}
	if flags.Changed("theta2") {
		cfg.Angles[1] = theta2
	}
	if flags.Changed("velocity") {
		cfg.Velocity = velocity
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("length") {
		cfg.Length = length
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("trace") {
		cfg.TraceLength = traceLength
	}
	if flags.Changed("scheme") {
		cfg.ColorScheme = scheme
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}

	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
