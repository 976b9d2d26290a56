package hwfifo

import (
	"log"

	"github.com/sarchlab/hsfifo/sim/hooking"
)

// TransferLogger is a hook that logs every accepted write and read.
type TransferLogger struct {
	logger *log.Logger
}

// NewTransferLogger creates a TransferLogger that writes to the logger.
func NewTransferLogger(logger *log.Logger) *TransferLogger {
	return &TransferLogger{logger: logger}
}

// Func logs the transfer.
func (l *TransferLogger) Func(ctx hooking.HookCtx) {
	var kind string

	switch ctx.Pos {
	case HookPosWrite:
		kind = "write"
	case HookPosRead:
		kind = "read"
	default:
		return
	}

	name := "unnamed"
	if n, ok := ctx.Domain.(interface{ Name() string }); ok {
		name = n.Name()
	}

	detail, _ := ctx.Detail.(TransferDetail)

	l.logger.Printf("cycle %d, %s, %s %v, occupancy %d",
		detail.Cycle, name, kind, ctx.Item, detail.Occupancy)
}
