package progress

import "go.uber.org/zap"

// Sink accepts opaque progress events. Implementations may fail to deliver
// (client disconnect, full buffer) — Emit reports that via the bool return
// rather than an error, since the orchestrator never treats a sink failure
// as fatal (spec §5: "the orchestrator never aborts on sink failure").
type Sink interface {
	Emit(Event) bool
}

// SafeSink wraps a Sink so that a panicking or misbehaving implementation
// can never unwind into orchestrator code. All writes go through here.
type SafeSink struct {
	inner  Sink
	logger *zap.Logger
}

// NewSafeSink wraps inner. A nil inner is valid and silently discards events,
// which keeps the orchestrator runnable in tests or headless runs with no
// attached progress consumer.
func NewSafeSink(inner Sink, logger *zap.Logger) *SafeSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeSink{inner: inner, logger: logger}
}

// Write emits evt, swallowing any error or panic from the underlying sink.
func (s *SafeSink) Write(evt Event) {
	if s == nil || s.inner == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("progress sink panicked, dropping event",
				zap.Any("recover", r), zap.String("type", evt.Type))
		}
	}()
	if ok := s.inner.Emit(evt); !ok {
		s.logger.Debug("progress sink rejected event", zap.String("type", evt.Type))
	}
}

// Close releases the underlying sink if it is closable.
func (s *SafeSink) Close() {
	if s == nil || s.inner == nil {
		return
	}
	if c, ok := s.inner.(interface{ Close() }); ok {
		c.Close()
	}
}
