package errors

import (
	"os"

	"github.com/rs/zerolog"
)

// LogHandler is an ErrorHandler that logs errors through zerolog.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Logger is the destination logger. The zero value logs to stderr.
	Logger *zerolog.Logger
}

func (h *LogHandler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return &l
}

// HandleError logs a CompositionError.
func (h *LogHandler) HandleError(err *CompositionError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("composable", err.Composable).
		Str("kind", KindComposition.String())
	if err.Err != nil {
		ev = ev.AnErr("cause", err.Err)
	}
	if err.Recovered != nil {
		ev = ev.Interface("recovered", err.Recovered)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("composition error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("op", err.Op).
		Str("kind", KindPanic.String()).
		Interface("value", err.Value)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("recovered panic")
}
