package pipeline

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
)

// TraceLogger is a hook that logs every emitted slot at debug level.
type TraceLogger struct {
	logger *slog.Logger
}

// NewTraceLogger creates a TraceLogger. A nil logger uses slog's default.
func NewTraceLogger(logger *slog.Logger) *TraceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &TraceLogger{logger: logger}
}

// Func logs the slot carried by ctx.
func (l *TraceLogger) Func(ctx sim.HookCtx) {
	slot, ok := ctx.Item.(Slot)
	if !ok {
		return
	}

	text := slot.Inst.String()
	if text == "" {
		text = slot.Inst.DisplayName
	}

	l.logger.Debug("pipeline slot",
		"pos", ctx.Pos.Name,
		"kind", slot.Kind.String(),
		"pc", slot.PC,
		"inst", text,
	)
}
