// Package stream broadcasts a ticking pool to websocket clients as JSON
// frames.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/chaosfan/internal/palette"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

const (
	DefaultMaxClients = 100
	sendBuffer        = 4
)

type Bob struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Colour string  `json:"colour"`
}

// Frame is one tick of the fan. Pendulums with a non-finite state are
// left out.
type Frame struct {
	Tick      int   `json:"tick"`
	Pendulums []Bob `json:"pendulums"`
}

func NewFrame(tick int, p *sim.Pool, origin physics.Vec2, scheme string) Frame {
	f := Frame{Tick: tick, Pendulums: make([]Bob, 0, p.Len())}
	for i, e := range p.All() {
		if !e.Valid() {
			continue
		}
		pos := e.Position(origin)
		f.Pendulums = append(f.Pendulums, Bob{
			Index:  i,
			X:      pos.X,
			Y:      pos.Y,
			Colour: palette.Colour(scheme, e.ColorIndex),
		})
	}
	return f
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server owns a pool: Run is the only goroutine that ticks it.
type Server struct {
	pool       *sim.Pool
	scheme     string
	fps        int
	origin     physics.Vec2
	MaxClients int
	logger     *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewServer(pool *sim.Pool, scheme string, fps int, logger *slog.Logger) *Server {
	if fps <= 0 {
		fps = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pool:       pool,
		scheme:     scheme,
		fps:        fps,
		MaxClients: DefaultMaxClients,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Clients is the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	if len(s.clients) >= s.MaxClients {
		s.mu.Unlock()
		s.logger.Warn("max clients reached", "max", s.MaxClients)
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("client connected", "remote", r.RemoteAddr)

	go s.writePump(c)

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		close(c.send)
		conn.Close()
		s.logger.Info("client disconnected", "remote", r.RemoteAddr)
	}()

	// Clients send nothing we use; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			s.logger.Debug("write to client failed", "err", err)
			return
		}
	}
}

// Broadcast queues f for every client and returns how many accepted it.
// Clients whose queue is full drop the frame.
func (s *Server) Broadcast(f Frame) (int, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sent := 0
	for c := range s.clients {
		select {
		case c.send <- data:
			sent++
		default:
			s.logger.Debug("client queue full, dropping frame", "tick", f.Tick)
		}
	}
	return sent, nil
}

// Run ticks the pool at the server's frame rate and broadcasts each frame
// until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pool.Tick(s.origin)
			if _, err := s.Broadcast(NewFrame(s.pool.Frames(), s.pool, s.origin, s.scheme)); err != nil {
				return err
			}
		}
	}
}

// ListenAndServe serves /ws on addr and runs the pool until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		errc <- s.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving", "addr", addr, "fps", s.fps, "pendulums", s.pool.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err := <-errc
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
