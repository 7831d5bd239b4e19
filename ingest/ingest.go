// Package ingest accepts log records over TCP and writes them to a sink.
//
// The protocol is line based. Each newline terminated line is either
// "<SEVERITY> <message>" or a bare message, which is logged at INFO.
// Records are logged under the remote address as their origin.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/panjf2000/gnet/v2"
	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/compat"
)

// maxLineSize bounds a buffered partial line; longer input is split
const maxLineSize = 64 * 1024

// Server is a gnet event handler feeding a sink
type Server struct {
	gnet.BuiltinEventEngine

	sink      *logsink.Sink
	logger    logging.Logger
	multicore bool

	engine gnet.Engine
	booted chan struct{}

	conns atomic.Int64
	lines atomic.Uint64
}

// connState is the per-connection line buffer
type connState struct {
	origin  *logsink.Origin
	pending []byte
}

// Option customizes a Server
type Option func(*Server)

// WithLogger sets the logger for gnet's own diagnostics
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMulticore runs one event loop per CPU
func WithMulticore(multicore bool) Option {
	return func(s *Server) {
		s.multicore = multicore
	}
}

// New creates an ingest server writing to sink.
// gnet diagnostics go to the sink under the "gnet" origin unless WithLogger is given.
func New(sink *logsink.Sink, opts ...Option) *Server {
	s := &Server{
		sink:   sink,
		logger: compat.NewGnetAdapter(sink.Origin("gnet")),
		booted: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve runs the server on addr, e.g. "tcp://127.0.0.1:9000", until ctx is done
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- gnet.Run(s, addr,
			gnet.WithMulticore(s.multicore),
			gnet.WithReusePort(true),
			gnet.WithLogger(s.logger),
		)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	select {
	case <-s.booted:
	case err := <-errCh:
		return err
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.engine.Stop(stopCtx); err != nil {
		return fmt.Errorf("ingest: stop: %w", err)
	}
	return <-errCh
}

// Connections returns the number of open connections
func (s *Server) Connections() int64 {
	return s.conns.Load()
}

// Lines returns the number of lines handed to the sink
func (s *Server) Lines() uint64 {
	return s.lines.Load()
}

// OnBoot records the engine so Serve can stop it
func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.engine = eng
	close(s.booted)
	return gnet.None
}

// OnOpen attaches a line buffer to the connection
func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	s.conns.Add(1)
	c.SetContext(s.newConnState(c.RemoteAddr().String()))
	return nil, gnet.None
}

// OnTraffic logs every complete line received
func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	st, ok := c.Context().(*connState)
	if !ok {
		st = s.newConnState(c.RemoteAddr().String())
		c.SetContext(st)
	}

	data, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}
	s.consume(st, data)
	return gnet.None
}

// OnClose logs a trailing partial line
func (s *Server) OnClose(c gnet.Conn, _ error) gnet.Action {
	s.conns.Add(-1)
	if st, ok := c.Context().(*connState); ok {
		s.flush(st)
	}
	return gnet.None
}

func (s *Server) newConnState(remote string) *connState {
	return &connState{origin: s.sink.Origin(remote)}
}

// consume appends data to the connection buffer and logs complete lines
func (s *Server) consume(st *connState, data []byte) {
	st.pending = append(st.pending, data...)
	for {
		i := bytes.IndexByte(st.pending, '\n')
		if i < 0 {
			break
		}
		s.emit(st, st.pending[:i])
		st.pending = st.pending[i+1:]
	}

	for len(st.pending) > maxLineSize {
		s.emit(st, st.pending[:maxLineSize])
		st.pending = st.pending[maxLineSize:]
	}

	if len(st.pending) == 0 {
		st.pending = nil
	}
}

// flush logs whatever is left in the buffer
func (s *Server) flush(st *connState) {
	if len(st.pending) > 0 {
		s.emit(st, st.pending)
	}
	st.pending = nil
}

func (s *Server) emit(st *connState, raw []byte) {
	line := strings.TrimRight(string(raw), "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	severity, msg := ParseLine(line)
	s.lines.Add(1)
	st.origin.Log(severity, msg)
}

// ParseLine splits an optional leading severity name from the message.
// Lines without a recognized severity are INFO with the whole line as message.
func ParseLine(line string) (logsink.Severity, string) {
	head, rest, found := strings.Cut(line, " ")
	sev, err := logsink.ParseSeverity(strings.Trim(head, "[]"))
	if err != nil {
		return logsink.LevelInfo, line
	}
	if !found {
		return sev, ""
	}
	return sev, strings.TrimLeft(rest, " ")
}
