package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfan/internal/analysis"
	"github.com/san-kum/chaosfan/internal/config"
	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/experiment"
	"github.com/san-kum/chaosfan/internal/export"
	"github.com/san-kum/chaosfan/internal/integrators"
	"github.com/san-kum/chaosfan/internal/metrics"
	"github.com/san-kum/chaosfan/internal/optim"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
	"github.com/san-kum/chaosfan/internal/storage"
	"github.com/san-kum/chaosfan/internal/stream"
	"github.com/san-kum/chaosfan/internal/viz"
)

var origin = physics.Vec2{}

func liveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "run the fan in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pool, err := cfg.NewPool()
	if err != nil {
		return err
	}
	return viz.Run(pool, cfg.ColorScheme, cfg.FPS)
}

func runCmd() *cobra.Command {
	var (
		ticks int
		save  bool
		every int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "tick the fan headlessly and report metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runHeadless(cmd.Context(), cfg, ticks, save, every)
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 1000, "number of ticks")
	cmd.Flags().BoolVar(&save, "save", false, "save frames to the data directory")
	cmd.Flags().IntVar(&every, "every", 1, "save one frame every n ticks")
	return cmd
}

func runHeadless(ctx context.Context, cfg *config.Config, ticks int, save bool, every int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	exp := experiment.New(cfg, ticks)
	if save {
		exp.Record(storage.New(dataDir), every)
	}
	if err := exp.Setup(); err != nil {
		return err
	}

	slog.Info("running", "pendulums", cfg.Count, "ticks", ticks, "integrator", cfg.Integrator)
	result, err := exp.Run(ctx)
	if result == nil {
		return err
	}
	slog.Info("finished", "ticks", result.Ticks, "elapsed", result.Elapsed)

	fmt.Printf("completed %d ticks in %v\n", result.Ticks, result.Elapsed)
	if result.RunID != "" {
		fmt.Printf("run id: %s\n", result.RunID)
	}
	printMetrics(result.Metrics)
	return err
}

func printMetrics(values map[string]float64) {
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, values[name])
	}
}

func sweepCmd() *cobra.Command {
	var (
		ticks  int
		metric string
		grid   []string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search parameters for the smallest metric value",
		Long:  "Each --param is name=v1,v2,... with name one of " + strings.Join(optim.Names(), ", ") + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(grid) == 0 {
				return fmt.Errorf("at least one --param is required")
			}

			names := make([]string, 0, len(grid))
			ranges := make([][]float64, 0, len(grid))
			for _, arg := range grid {
				name, values, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid --param %q (want name=v1,v2)", arg)
				}
				var vals []float64
				for _, v := range strings.Split(values, ",") {
					f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
					if err != nil {
						return fmt.Errorf("invalid value in --param %q: %w", arg, err)
					}
					vals = append(vals, f)
				}
				names = append(names, name)
				ranges = append(ranges, vals)
			}

			g, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}
			best, val, trials, err := g.Search(cmd.Context(), cfg, ticks, metric)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
			for _, tr := range trials {
				cols := make([]string, len(names))
				for i, n := range names {
					cols[i] = strconv.FormatFloat(tr.Params[n], 'g', -1, 64)
				}
				value := fmt.Sprintf("%.6g", tr.Value)
				if tr.Err != nil {
					value = "error: " + tr.Err.Error()
				}
				fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), value)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			if err != nil {
				return err
			}
			fmt.Printf("\nbest: %v (%s = %.6g)\n", best, metric, val)
			return nil
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 500, "ticks per trial")
	cmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimise")
	cmd.Flags().StringArrayVar(&grid, "param", nil, "parameter grid, name=v1,v2,...")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tCOUNT\tTICKS\tDT\tINTEG\tDAMPING")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%s\t%v\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Count,
					run.Ticks,
					run.Dt,
					run.Integrator,
					run.Damping,
				)
			}
			return w.Flush()
		},
	}
}

var frameColumns = map[string]func(storage.FrameRecord) float64{
	"theta1": func(f storage.FrameRecord) float64 { return f.Theta1 },
	"theta2": func(f storage.FrameRecord) float64 { return f.Theta2 },
	"omega1": func(f storage.FrameRecord) float64 { return f.Omega1 },
	"omega2": func(f storage.FrameRecord) float64 { return f.Omega2 },
	"x":      func(f storage.FrameRecord) float64 { return f.X },
	"y":      func(f storage.FrameRecord) float64 { return f.Y },
}

func plotCmd() *cobra.Command {
	var (
		index  int
		column string
	)
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one pendulum of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			get, ok := frameColumns[column]
			if !ok {
				return fmt.Errorf("unknown column %q", column)
			}

			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			frames, err := st.LoadFrames(args[0])
			if err != nil {
				return err
			}

			series := storage.Series(frames, index)
			if len(series) == 0 {
				return fmt.Errorf("no data for pendulum %d", index)
			}
			data := make([]float64, len(series))
			for i, f := range series {
				data[i] = get(f)
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("pendulum: %d of %d\n", index, meta.Count)
			fmt.Printf("samples: %d\n\n", len(data))

			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s vs tick", column)),
			)
			fmt.Println(graph)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "pendulum index")
	cmd.Flags().StringVar(&column, "var", "theta1", "column (theta1, theta2, omega1, omega2, x, y)")
	return cmd
}

func svgCmd() *cobra.Command {
	var (
		ticks   int
		out     string
		width   int
		height  int
		braille bool
	)
	cmd := &cobra.Command{
		Use:   "svg",
		Short: "tick the fan and write its traces as SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pool, err := cfg.NewPool()
			if err != nil {
				return err
			}
			pool.SetRunning(true)
			if err := pool.Run(cmd.Context(), ticks, origin, nil); err != nil {
				return err
			}

			var svg string
			if braille {
				svg = export.CanvasToSVG(export.PoolCanvas(pool, width/8, height/16, cfg.ColorScheme), 4)
			} else {
				svg = export.TracesSVG(pool, width, height, cfg.ColorScheme)
			}
			if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d pendulums, %d ticks)\n", out, pool.Len(), pool.Frames())
			return nil
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 300, "number of ticks before drawing")
	cmd.Flags().StringVarP(&out, "out", "o", "fan.svg", "output file")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 800, "image height")
	cmd.Flags().BoolVar(&braille, "braille", false, "render the terminal canvas instead of vector traces")
	return cmd
}

// startState is pendulum index of the configured fan as an integrator
// state.
func startState(cfg *config.Config, index int) dynamo.State {
	return dynamo.State{
		physics.DegToRad(cfg.Angles[0]) + float64(index)*sim.AngleOffset,
		physics.DegToRad(cfg.Angles[1]) - float64(index)*sim.AngleOffset,
		cfg.Velocity,
		cfg.Velocity,
	}
}

func paramsOf(cfg *config.Config) physics.Params {
	return physics.Params{
		M1: cfg.Mass, M2: cfg.Mass,
		L1: cfg.Length, L2: cfg.Length,
		Gravity: cfg.Gravity,
	}
}

func lyapunovCmd() *cobra.Command {
	var (
		steps int
		eps   float64
		index int
		sets  []string
	)
	cmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent of one pendulum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dp := &physics.DoublePendulum{Params: paramsOf(cfg)}
			if err := setParams(dp, sets); err != nil {
				return err
			}
			lambda, err := analysis.LyapunovExponent(dp, integrators.NewRK4(), startState(cfg, index), cfg.Dt, steps, eps)
			if err != nil {
				return err
			}
			fmt.Printf("pendulum %d, %d steps of %g\n", index, steps, cfg.Dt)
			fmt.Printf("largest lyapunov exponent: %.6f /s\n", lambda)
			if lambda > 0 {
				fmt.Printf("separation e-folds every %.2fs\n", 1/lambda)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 20000, "integration steps")
	cmd.Flags().Float64Var(&eps, "eps", 1e-8, "initial separation")
	cmd.Flags().IntVar(&index, "index", 0, "pendulum index within the fan")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "per-link parameter name=value (m1 m2 l1 l2 g), repeatable")
	return cmd
}

// setParams applies name=value pairs in order.
func setParams(c dynamo.Configurable, sets []string) error {
	for _, arg := range sets {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q (want name=value)", arg)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("invalid value in --set %q: %w", arg, err)
		}
		if err := c.SetParam(strings.TrimSpace(name), v); err != nil {
			return err
		}
	}
	return nil
}

func phaseCmd() *cobra.Command {
	var (
		steps    int
		link     int
		index    int
		poincare bool
		out      string
	)
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "phase portrait or poincaré section of one pendulum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var portrait *analysis.Portrait
			if poincare {
				portrait = analysis.Poincare(paramsOf(cfg), startState(cfg, index), cfg.Dt, steps)
			} else {
				portrait = analysis.Phase(paramsOf(cfg), startState(cfg, index), link-1, cfg.Dt, steps)
			}
			if portrait == nil || len(portrait.Points) == 0 {
				return fmt.Errorf("no points recorded")
			}

			if out != "" {
				svg := export.PortraitSVG(portrait.Points, 600, 600, "#00ccff")
				if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
					return err
				}
				fmt.Printf("wrote %s (%d points)\n", out, len(portrait.Points))
				return nil
			}
			fmt.Print(portrait.ASCII(80, 24))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 5000, "integration steps")
	cmd.Flags().IntVar(&link, "link", 1, "link to plot (1 or 2)")
	cmd.Flags().IntVar(&index, "index", 0, "pendulum index within the fan")
	cmd.Flags().BoolVar(&poincare, "poincare", false, "plot (θ2, ω2) where θ1 crosses zero upward")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write SVG instead of printing")
	return cmd
}

func modesCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "small-angle normal modes and the measured dominant frequency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			slow, fast := physics.NormalModes(cfg.Gravity, cfg.Length)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tω (rad/s)\tf (Hz)\tPERIOD (s)")
			for _, m := range []struct {
				name  string
				omega float64
			}{{"slow", slow}, {"fast", fast}} {
				fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%.3f\n", m.name, m.omega, m.omega/(2*math.Pi), 2*math.Pi/m.omega)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			portrait := analysis.Phase(paramsOf(cfg), startState(cfg, 0), 0, cfg.Dt, steps)
			samples := make([]float64, len(portrait.Points))
			for i, p := range portrait.Points {
				samples[i] = p.X
			}
			fmt.Printf("\nmeasured θ1 dominant frequency: %.5f Hz\n", analysis.DominantFrequency(samples, cfg.Dt))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 16384, "integration steps for the measured spectrum")
	return cmd
}

func compareCmd() *cobra.Command {
	var ticks int
	cmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare energy drift of integrators on the same fan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = integrators.Names()
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATOR\tENERGY DRIFT\tSPREAD θ1\tSTABILITY\tTIME")
			for _, name := range names {
				integ, err := integrators.New(name)
				if err != nil {
					return err
				}
				pool := sim.NewPool(cfg.Count, cfg.Defaults()).WithIntegrator(integ)
				pool.SetRunning(true)

				drift, spread, stab := metrics.NewEnergyDrift(), metrics.NewSpread(0), metrics.NewStability()
				drift.Observe(pool)
				start := time.Now()
				err = pool.Run(cmd.Context(), ticks, origin, func(p *sim.Pool) {
					drift.Observe(p)
					stab.Observe(p)
				})
				if err != nil {
					return err
				}
				spread.Observe(pool)
				fmt.Fprintf(w, "%s\t%.3e\t%.4f\t%.3f\t%v\n", name, drift.Value(), spread.Value(), stab.Value(), time.Since(start).Round(time.Millisecond))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 1000, "number of ticks")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOUNT\tANGLES\tVELOCITY\tDAMPING\tTRACE")
			for _, name := range config.ListPresets() {
				p, err := config.GetPreset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%.0f°,%.0f°\t%.2f\t%v\t%d\n", name, p.Count, p.Angles[0], p.Angles[1], p.Velocity, p.Damping, p.TraceLength)
			}
			return w.Flush()
		},
	}
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the fan to websocket clients on /ws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pool, err := cfg.NewPool()
			if err != nil {
				return err
			}
			pool.SetRunning(true)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			srv := stream.NewServer(pool, cfg.ColorScheme, cfg.FPS, slog.Default())
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
