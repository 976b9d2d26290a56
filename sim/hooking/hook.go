// Package hooking lets tracers, loggers and recorders observe simulation
// elements without the elements knowing about them.
package hooking

import "log"

// HookPos names a point at which an element invokes its hooks.
type HookPos struct {
	Name string
}

// HookCtx describes one hook invocation. Domain is the element that invokes
// the hook; the meaning of Item and Detail depends on Pos.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is an element that hooks can attach to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// A Hook is called at the hook positions of the elements it is attached to.
// Hooks of a clock domain may be called from several goroutines at once.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc turns a function into a Hook.
type HookFunc func(ctx HookCtx)

// Func calls the function.
func (f *HookFunc) Func(ctx HookCtx) {
	(*f)(ctx)
}

// NewHookFunc wraps a function as a Hook. The hook is a pointer, so that two
// wrappers of the same function are still different hooks.
func NewHookFunc(f func(ctx HookCtx)) Hook {
	h := HookFunc(f)
	return &h
}

// HookableBase implements Hookable. Hooks must be attached before the
// simulation runs.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook attaches a hook. Attaching the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, attached := range h.hooks {
		if attached == hook {
			log.Panicf("hook %v is already attached", hook)
		}
	}

	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the attached hooks.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// InvokeHook calls the attached hooks in the order they were attached.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
