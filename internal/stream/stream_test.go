package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewFrame(t *testing.T) {
	pool := sim.NewPool(3, sim.DefaultDefaults())
	f := NewFrame(7, pool, physics.Vec2{}, "rainbow")

	if f.Tick != 7 || len(f.Pendulums) != 3 {
		t.Fatalf("unexpected frame %+v", f)
	}
	want := pool.At(2).Position(physics.Vec2{})
	if got := f.Pendulums[2]; got.Index != 2 || got.X != want.X || got.Y != want.Y {
		t.Errorf("bob 2 = %+v, want %v", got, want)
	}
	if f.Pendulums[0].Colour == "" {
		t.Error("expected a colour")
	}
}

func TestNewFrameSkipsInvalid(t *testing.T) {
	pool := sim.NewPool(2, sim.DefaultDefaults())
	pool.At(0).Angles[0] = math.NaN()
	f := NewFrame(0, pool, physics.Vec2{}, "rainbow")
	if len(f.Pendulums) != 1 || f.Pendulums[0].Index != 1 {
		t.Errorf("expected only pendulum 1, got %+v", f.Pendulums)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastToClient(t *testing.T) {
	pool := sim.NewPool(4, sim.DefaultDefaults())
	s := NewServer(pool, "viridis", 60, quietLogger())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return s.Clients() == 1 })

	sent, err := s.Broadcast(NewFrame(42, pool, physics.Vec2{}, "viridis"))
	if err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if sent != 1 {
		t.Errorf("expected 1 delivery, got %d", sent)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Tick != 42 || len(got.Pendulums) != 4 {
		t.Errorf("unexpected frame tick=%d pendulums=%d", got.Tick, len(got.Pendulums))
	}

	conn.Close()
	waitFor(t, func() bool { return s.Clients() == 0 })
}

func TestBroadcastDropsForSlowClient(t *testing.T) {
	s := NewServer(sim.NewPool(1, sim.DefaultDefaults()), "rainbow", 60, quietLogger())
	slow := &client{send: make(chan []byte, 1)}
	s.clients[slow] = struct{}{}

	f := Frame{Tick: 1}
	if n, _ := s.Broadcast(f); n != 1 {
		t.Errorf("first frame should be queued, got %d", n)
	}
	if n, _ := s.Broadcast(f); n != 0 {
		t.Errorf("second frame should be dropped, got %d", n)
	}
	if len(slow.send) != 1 {
		t.Errorf("queue length %d", len(slow.send))
	}
}

func TestMaxClients(t *testing.T) {
	s := NewServer(sim.NewPool(1, sim.DefaultDefaults()), "rainbow", 60, quietLogger())
	s.MaxClients = 0

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the server to close the connection")
	}
	if s.Clients() != 0 {
		t.Errorf("expected no registered clients, got %d", s.Clients())
	}
}

func TestRunTicksPool(t *testing.T) {
	pool := sim.NewPool(2, sim.DefaultDefaults())
	pool.SetRunning(true)
	s := NewServer(pool, "rainbow", 200, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if pool.Frames() == 0 || pool.Steps() == 0 {
		t.Errorf("expected the pool to tick, frames=%d steps=%d", pool.Frames(), pool.Steps())
	}
}
