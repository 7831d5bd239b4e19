// Package inspect serves read-only HTTP access to a log file and sink counters.
//
// Routes:
//
//	GET /logs?level=ERROR&from=...&to=...[&format=json]
//	GET /archives
//	GET /stats
//
// level may repeat or be comma separated. from and to accept
// "2006-01-02 15:04:05" in local time or RFC 3339.
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/formatter"
)

// StatsProvider is satisfied by *logsink.Sink
type StatsProvider interface {
	Stats() logsink.Stats
}

// Server exposes a Reader over HTTP
type Server struct {
	reader *logsink.Reader
	stats  StatsProvider
	server *fasthttp.Server
}

// recordView is the JSON shape of a record
type recordView struct {
	Time     string `json:"time"`
	Origin   string `json:"origin"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// New creates an inspect server. stats may be nil, which disables /stats.
// logger receives fasthttp's own diagnostics; nil uses fasthttp's default.
func New(reader *logsink.Reader, stats StatsProvider, logger fasthttp.Logger) *Server {
	s := &Server{
		reader: reader,
		stats:  stats,
	}
	s.server = &fasthttp.Server{
		Handler:      s.Handler,
		Logger:       logger,
		Name:         "logsink-inspect",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Serve listens on addr until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("inspect: shutdown: %w", err)
		}
		return <-errCh
	}
}

// Handler routes a request
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	switch string(ctx.Path()) {
	case "/logs":
		s.handleLogs(ctx)
	case "/archives":
		s.handleArchives(ctx)
	case "/stats":
		s.handleStats(ctx)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) handleLogs(ctx *fasthttp.RequestCtx) {
	filter, err := parseFilter(ctx.QueryArgs())
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		return
	}

	if string(ctx.QueryArgs().Peek("format")) == "json" {
		records, err := s.reader.Records(filter)
		if err != nil {
			ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
			return
		}
		views := make([]recordView, 0, len(records))
		for _, rec := range records {
			views = append(views, recordView{
				Time:     rec.Time.Format(formatter.TimestampLayout),
				Origin:   rec.Origin,
				Severity: rec.Severity.String(),
				Message:  rec.Message,
			})
		}
		writeJSON(ctx, views)
		return
	}

	lines, err := s.reader.Read(filter)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("text/plain; charset=utf-8")
	for _, line := range lines {
		ctx.WriteString(line)
		ctx.WriteString("\n")
	}
}

func (s *Server) handleArchives(ctx *fasthttp.RequestCtx) {
	archives, err := s.reader.Archives()
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	if archives == nil {
		archives = []logsink.Archive{}
	}
	writeJSON(ctx, archives)
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	if s.stats == nil {
		ctx.Error("stats not available", fasthttp.StatusNotFound)
		return
	}
	writeJSON(ctx, s.stats.Stats())
}

// parseFilter builds a reader filter from query arguments
func parseFilter(args *fasthttp.Args) (logsink.Filter, error) {
	var levels []string
	for _, raw := range args.PeekMulti("level") {
		levels = append(levels, string(raw))
	}
	return ParseFilter(levels, string(args.Peek("from")), string(args.Peek("to")))
}

// ParseFilter builds a reader filter from user input. Each levels entry may
// hold several comma-separated names; from and to go through ParseTime.
func ParseFilter(levels []string, from, to string) (logsink.Filter, error) {
	var f logsink.Filter

	for _, raw := range levels {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			sev, err := logsink.ParseSeverity(name)
			if err != nil {
				return f, err
			}
			f.Levels = append(f.Levels, sev)
		}
	}

	var err error
	if f.From, err = ParseTime(from); err != nil {
		return f, fmt.Errorf("invalid from: %w", err)
	}
	if f.To, err = ParseTime(to); err != nil {
		return f, fmt.Errorf("invalid to: %w", err)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, errors.New("to is before from")
	}
	return f, nil
}

// ParseTime accepts the log line timestamp layout in local time or RFC 3339.
// An empty value is the zero time.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(formatter.TimestampLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
