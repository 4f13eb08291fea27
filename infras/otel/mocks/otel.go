package mocks

import (
	"context"
	"sync"

	"appointer/infras/otel"
)

type otelImpl struct {
	mu     sync.Mutex
	spans  []string
	errors []error
}

// NewScope implements otel.Otel.
func (o *otelImpl) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	o.mu.Lock()
	o.spans = append(o.spans, spanName)
	o.mu.Unlock()

	return ctx, &scopeImpl{parent: o}
}

// Shutdown implements otel.Otel.
func (o *otelImpl) Shutdown(_ context.Context) error {
	return nil
}

func (o *otelImpl) record(err error) {
	o.mu.Lock()
	o.errors = append(o.errors, err)
	o.mu.Unlock()
}

// Recorder is an in-memory Otel that remembers span names and traced errors.
type Recorder struct {
	*otelImpl
}

// Spans returns the span names opened so far.
func (r Recorder) Spans() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.spans...)
}

// Errors returns every error passed to TraceError.
func (r Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.errors...)
}

func NewOtel() otel.Otel {
	return &otelImpl{}
}

func NewRecorder() Recorder {
	return Recorder{otelImpl: &otelImpl{}}
}
