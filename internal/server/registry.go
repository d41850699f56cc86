package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pseudotrace/pkg/interpreter"
)

var (
	ErrTooManySessions = errors.New("too many trace sessions")
	ErrUnknownOp       = errors.New("unknown op")
)

// Request is a client message on the trace socket.
type Request struct {
	Op     string `json:"op"` // start, step, run, reset, snapshot
	Source string `json:"source,omitempty"`
	Vars   string `json:"vars,omitempty"`
}

// Reply answers every Request.
type Reply struct {
	Session  string                `json:"session"`
	Snapshot *interpreter.Snapshot `json:"snapshot,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// session is one trace owned by one connection. mu serialises the
// connection's steps against snapshot reads over HTTP.
type session struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex
	it *interpreter.Interpreter
}

// handle applies req to the session. A run stops early when ctx is done.
func (s *session) handle(ctx context.Context, req Request) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch req.Op {
	case "start":
		err = s.it.Start(req.Source, req.Vars)
	case "step":
		_, err = s.it.Step()
	case "run":
		err = s.it.RunContext(ctx)
	case "reset":
		s.it.Reset()
	case "snapshot":
	default:
		err = fmt.Errorf("%w %q", ErrUnknownOp, req.Op)
	}

	snap := s.it.Snapshot()
	reply := Reply{Session: s.id, Snapshot: &snap}
	if err != nil {
		reply.Error = err.Error()
	}
	return reply
}

func (s *session) snapshot() interpreter.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.it.Snapshot()
}

type registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	max      int
	closed   bool
}

func newRegistry(max int) *registry {
	return &registry{sessions: make(map[string]*session), max: max}
}

func (r *registry) open(it *interpreter.Interpreter) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || len(r.sessions) >= r.max {
		return nil, ErrTooManySessions
	}

	s := &session{id: uuid.NewString(), it: it}
	r.sessions[s.id] = s
	return s, nil
}

// attach records the session's connection. After closeAll the connection is
// closed straight away.
func (r *registry) attach(s *session, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.conn = conn
	if r.closed {
		conn.Close()
	}
}

func (r *registry) close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *registry) get(id string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// closeAll drops every open connection; their handlers then unwind.
func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for _, s := range r.sessions {
		if s.conn != nil {
			s.conn.Close()
		}
	}
}
