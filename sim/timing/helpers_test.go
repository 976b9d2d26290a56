package timing

import "github.com/sarchlab/hsfifo/sim/hooking"

type hookRecorder struct {
	record func(pos string)
}

func (h *hookRecorder) Func(ctx hooking.HookCtx) {
	h.record(ctx.Pos.Name)
}

func hookFunc(record func(pos string)) hooking.Hook {
	return &hookRecorder{record: record}
}

type endHandlerFunc func(now VTimeInSec)

func (f endHandlerFunc) Handle(now VTimeInSec) {
	f(now)
}
