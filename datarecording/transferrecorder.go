package datarecording

import (
	"fmt"

	"github.com/sarchlab/hsfifo/hwfifo"
	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/id"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// TransferTableName is the table that TransferRecorder writes into.
const TransferTableName = "fifo_transfers"

// TransferEntry is a row of the transfer table.
type TransferEntry struct {
	ID        string
	Component string
	Kind      string
	Cycle     uint64
	Time      float64
	Value     string
	Occupancy int
}

// TransferRecorder is a hook that records the accepted writes and reads of
// FIFOs.
type TransferRecorder struct {
	recorder   DataRecorder
	timeTeller timing.TimeTeller
}

// NewTransferRecorder creates the transfer table and returns a hook that
// writes into it. The time teller may be nil, in which case the time column
// is left 0.
func NewTransferRecorder(
	recorder DataRecorder,
	timeTeller timing.TimeTeller,
) *TransferRecorder {
	recorder.CreateTable(TransferTableName, TransferEntry{})

	return &TransferRecorder{
		recorder:   recorder,
		timeTeller: timeTeller,
	}
}

// Func records the transfer.
func (r *TransferRecorder) Func(ctx hooking.HookCtx) {
	var kind string

	switch ctx.Pos {
	case hwfifo.HookPosWrite:
		kind = "write"
	case hwfifo.HookPosRead:
		kind = "read"
	default:
		return
	}

	entry := TransferEntry{
		ID:    id.Generate(),
		Kind:  kind,
		Value: fmt.Sprint(ctx.Item),
	}

	if named, ok := ctx.Domain.(naming.Named); ok {
		entry.Component = named.Name()
	}

	if detail, ok := ctx.Detail.(hwfifo.TransferDetail); ok {
		entry.Cycle = detail.Cycle
		entry.Occupancy = detail.Occupancy
	}

	if r.timeTeller != nil {
		entry.Time = r.timeTeller.Now()
	}

	r.recorder.InsertData(TransferTableName, entry)
}
