package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"pseudotrace/internal/config"
	"pseudotrace/pkg/interpreter"
)

const writeWait = 10 * time.Second

// Server hosts trace sessions over WebSocket, one session per connection.
type Server struct {
	cfg      *config.Config
	logger   *log.Logger
	upgrader websocket.Upgrader
	sessions *registry
	active   sync.WaitGroup

	// ctx bounds long-running ops; Serve replaces it with its own context
	ctx context.Context
}

func New(cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		sessions: newRegistry(cfg.Server.MaxSessions),
		ctx:      context.Background(),
	}
}

// Handler returns the HTTP routes: the trace socket and the snapshot endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /trace", s.handleTrace)
	mux.HandleFunc("GET /sessions/{id}", s.handleSnapshot)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully and
// closes every open trace socket.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.sessions.closeAll)

	g, gctx := errgroup.WithContext(ctx)
	s.ctx = gctx

	g.Go(func() error {
		s.logger.Info("Serving traces", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.active.Wait()
	s.logger.Info("Server stopped")
	return err
}

func (s *Server) newInterpreter() *interpreter.Interpreter {
	return interpreter.New(
		interpreter.WithMaxSteps(s.cfg.MaxSteps),
		interpreter.WithLogger(s.logger),
	)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	s.active.Add(1)
	defer s.active.Done()

	sess, err := s.sessions.open(s.newInterpreter())
	if err != nil {
		s.logger.Warn("Refusing connection", "remote", r.RemoteAddr, "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.sessions.close(sess.id)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.sessions.attach(sess, conn)
	if s.cfg.Server.ReadLimit > 0 {
		conn.SetReadLimit(s.cfg.Server.ReadLimit)
	}

	s.logger.Info("Session opened", "session", sess.id, "remote", r.RemoteAddr)
	defer s.logger.Info("Session closed", "session", sess.id)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Read failed", "session", sess.id, "error", err)
			}
			return
		}

		var reply Reply
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			reply = Reply{Session: sess.id, Error: "invalid request: " + err.Error()}
		} else {
			reply = sess.handle(s.ctx, req)
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("Write failed", "session", sess.id, "error", err)
			return
		}
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sess.snapshot()); err != nil {
		s.logger.Warn("Snapshot encode failed", "session", sess.id, "error", err)
	}
}
