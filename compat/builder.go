package compat

import (
	"fmt"

	"github.com/lixenwraith/logsink"
)

// Builder creates gnet and fasthttp adapters that share one emitter.
// The emitter is an existing sink or origin, or a new sink built from a config.
type Builder struct {
	emitter Emitter
	sink    *logsink.Sink
	cfg     *logsink.Config
	origin  string
	err     error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithEmitter specifies an existing emitter for the adapters.
// If this is set WithSink and WithConfig are ignored.
func (b *Builder) WithEmitter(e Emitter) *Builder {
	if e == nil {
		b.err = fmt.Errorf("logsink/compat: provided emitter cannot be nil")
		return b
	}
	b.emitter = e
	return b
}

// WithSink specifies an existing sink for the adapters
func (b *Builder) WithSink(s *logsink.Sink) *Builder {
	if s == nil {
		b.err = fmt.Errorf("logsink/compat: provided sink cannot be nil")
		return b
	}
	b.sink = s
	return b
}

// WithConfig provides a configuration for a new sink.
// It is used only if neither WithEmitter nor WithSink is set.
func (b *Builder) WithConfig(cfg *logsink.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithOrigin makes the adapters log under the given origin of the sink
func (b *Builder) WithOrigin(name string) *Builder {
	b.origin = name
	return b
}

// getEmitter resolves the emitter, creating a sink if necessary
func (b *Builder) getEmitter() (Emitter, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.emitter != nil {
		return b.emitter, nil
	}

	if b.sink == nil {
		s, err := logsink.New(b.cfg)
		if err != nil {
			return nil, err
		}
		// Cache the new sink for subsequent builds with this builder
		b.sink = s
	}

	if b.origin != "" {
		b.emitter = b.sink.Origin(b.origin)
	} else {
		b.emitter = b.sink
	}
	return b.emitter, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	e, err := b.getEmitter()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(e, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	e, err := b.getEmitter()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(e, opts...), nil
}

// GetEmitter returns the emitter the adapters write through
func (b *Builder) GetEmitter() (Emitter, error) {
	return b.getEmitter()
}

// --- Example Usage ---
//
//	sink := logsink.Instance()
//	builder := compat.NewBuilder().WithSink(sink).WithOrigin("net")
//
//	gnetLogger, err := builder.BuildGnet()
//	if err != nil { /* handle error */ }
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, err := builder.BuildFastHTTP()
//	if err != nil { /* handle error */ }
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
