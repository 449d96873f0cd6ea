// Package hooking lets observers attach to the points where a simulation
// advances, without the kernel knowing who is watching.
package hooking

// HookPos identifies where in the simulation a hook fires. Positions are
// compared by pointer.
type HookPos struct {
	Name string
}

// HookCtx describes one invocation site. Item is usually the simulation time
// of the event and Detail carries site-specific data.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is implemented by everything hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// Hook receives the events of the Hookables it is attached to.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f *HookFunc) Func(ctx HookCtx) {
	(*f)(ctx)
}

// NewHookFunc wraps f as a Hook. The returned hook is a distinct value, so the
// same function can be registered with several Hookables.
func NewHookFunc(f func(ctx HookCtx)) Hook {
	h := HookFunc(f)
	return &h
}

// HookableBase implements Hookable and can be embedded.
type HookableBase struct {
	hookList []Hook
}

// NewHookableBase creates an empty HookableBase.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// NumHooks counts the attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks lists the attached hooks in the order they were attached.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook registers a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, registered := range h.hookList {
		if registered == hook {
			panic("duplicated hook")
		}
	}

	h.hookList = append(h.hookList, hook)
}

// InvokeHook calls every attached hook with ctx, in attachment order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}
