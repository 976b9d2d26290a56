package timing

import (
	"log"

	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/naming"
)

// EventLogger is a hook that writes a line for every handled event.
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger creates an EventLogger that writes into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func logs the time, the type and the handler of the event.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	evt, ok := ctx.Item.(Event)
	if ctx.Pos != HookPosBeforeEvent || !ok {
		return
	}

	handler := "unnamed"
	if named, ok := evt.Handler().(naming.Named); ok {
		handler = named.Name()
	}

	h.logger.Printf("%.10f, %T -> %s", evt.Time(), evt, handler)
}
