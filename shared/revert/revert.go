// Package revert provides a small scoped-cleanup stack for unwinding
// multi-step resource acquisition on any exit path.
package revert

// Hook is a single cleanup step.
type Hook func()

// Reverter runs a stack of hooks, most recently added first, unless told
// that the operation succeeded.
type Reverter struct {
	hooks []Hook
}

// New returns an empty Reverter.
func New() *Reverter {
	return &Reverter{}
}

// Add pushes a cleanup hook onto the stack.
func (r *Reverter) Add(hook Hook) {
	r.hooks = append(r.hooks, hook)
}

// Fail runs every hook in reverse order of addition. It is a no-op if
// Success was already called. Intended to be deferred immediately after New.
func (r *Reverter) Fail() {
	if r.hooks == nil {
		return
	}

	hooks := r.hooks
	r.hooks = nil

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

// Success discards the hook stack, so a deferred Fail becomes a no-op.
func (r *Reverter) Success() {
	r.hooks = nil
}

// Clone returns a new Reverter carrying the same pending hooks, and clears
// the receiver's own stack. Useful when a function wants to hand its
// accumulated cleanup responsibility to a caller instead of running it.
func (r *Reverter) Clone() *Reverter {
	clone := &Reverter{hooks: r.hooks}
	r.hooks = nil
	return clone
}
