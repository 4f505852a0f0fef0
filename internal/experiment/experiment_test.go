package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/chaosfan/internal/config"
	"github.com/san-kum/chaosfan/internal/dynamo"
	"github.com/san-kum/chaosfan/internal/metrics"
	"github.com/san-kum/chaosfan/internal/storage"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Count = 4
	return cfg
}

func TestRunNotSetup(t *testing.T) {
	if _, err := New(smallConfig(), 10).Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
}

func TestRunCollectsMetrics(t *testing.T) {
	exp := New(smallConfig(), 200)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Ticks != 200 || result.Steps != 200 {
		t.Errorf("ticks=%d steps=%d", result.Ticks, result.Steps)
	}
	if result.Metrics["energy_drift"] > 1e-6 {
		t.Errorf("energy drift %g", result.Metrics["energy_drift"])
	}
	if result.Metrics["stability"] != 1 {
		t.Errorf("stability %f", result.Metrics["stability"])
	}
	if result.RunID != "" {
		t.Error("no run id expected without a store")
	}
}

func TestRunRecordsFrames(t *testing.T) {
	st := storage.New(t.TempDir())
	exp := New(smallConfig(), 10).Record(st, 5)
	if err := exp.Setup(metrics.NewEnergyDrift()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	meta, err := st.Load(result.RunID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Ticks != 10 || meta.Count != 4 {
		t.Errorf("metadata ticks=%d count=%d", meta.Ticks, meta.Count)
	}
	if _, ok := meta.Metrics["energy_drift"]; !ok {
		t.Error("expected metrics in metadata")
	}

	frames, err := st.LoadFrames(result.RunID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	// ticks 0, 5 and 10 for 4 pendulums
	if len(frames) != 12 {
		t.Errorf("expected 12 frames, got %d", len(frames))
	}
}

func TestRunCancelled(t *testing.T) {
	exp := New(smallConfig(), 1000)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		t.Fatalf("cancel should not be an error, got %v", err)
	}
	if result.Ticks != 0 {
		t.Errorf("expected no ticks, got %d", result.Ticks)
	}
}

func TestRunReportsInvalidPendulum(t *testing.T) {
	cfg := smallConfig()
	exp := New(cfg, 1)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	p := exp.Pool().At(2)
	p.Masses = [2]float64{0, 1}
	p.Angles = [2]float64{0.3, 0.3}

	_, err := exp.Run(context.Background())
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Index != 2 || !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("unexpected error %v", err)
	}
}
