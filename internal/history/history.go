// Package history implements the History Engine: undo/redo
// stacks of Command records, with coalescing of rapid Selection
// commands and overflow of large payloads to the spill package.
// The Command-pattern undo()/redo() methods mirror the original's
// history_manager.py State subclasses, but are owned per-Document
// instead of reached through a global singleton.
package history

import (
	"time"
)

// Command is one undoable/redoable action. Implementations close over
// whatever state (frame snapshots, selection deltas, masks) they need
// to reverse and reapply themselves, following the original's "replay
// via callback" style translated into Go closures/methods instead of a
// global document reference.
type Command interface {
	// Kind identifies the command's taxonomy for coalescing and
	// logging purposes.
	Kind() string
	// Undo reverses the command's effect.
	Undo() error
	// Redo reapplies the command's effect after an undo; the initial
	// apply is done by the caller before Push.
	Redo() error
	// Release frees any spilled payload associated with the command
	//. Safe to call more
	// than once.
	Release()
}

// Coalescer is implemented by commands that may merge with an
// immediately preceding command of the same kind within the coalescing
// window.
type Coalescer interface {
	// CoalesceWith attempts to merge other into the receiver, returning
	// true if the merge happened (in which case other is discarded
	// rather than pushed).
	CoalesceWith(other Command) bool
}

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// entry pairs a command with the wall-clock time it was pushed, used to
// evaluate the coalescing window.
type entry struct {
	cmd     Command
	at      time.Time
	initial bool // true only for the construction-time Selection
}

// Engine holds the undo and redo deques for one Document.
type Engine struct {
	undo []entry
	redo []entry

	coalesceWindow time.Duration
	now            Clock
	changing       bool // per-Document "is_changing_state" guard
	hasInitial     bool // true once the construction-time Selection has been pushed
}

// New constructs an Engine with the given coalescing window and clock.
func New(coalesceWindow time.Duration, now Clock) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{coalesceWindow: coalesceWindow, now: now}
}

// PushInitial records the construction-time Selection command that every
// Document must push so every user-visible state has an undo target
//. It
// bypasses coalescing and marks the stack so Undo will never pop it.
func (e *Engine) PushInitial(cmd Command) {
	e.undo = append(e.undo, entry{cmd: cmd, at: e.now(), initial: true})
	e.hasInitial = true
}

// Push records cmd as having just been applied (the caller has already
// made the change), clearing the redo stack and attempting to coalesce with
// the top of the undo stack first. The construction-time initial entry
// is never a coalescing target, so the first real Selection after
// construction always becomes its own undo record.
func (e *Engine) Push(cmd Command) {
	now := e.now()
	e.clearRedo()

	if len(e.undo) > 0 {
		top := e.undo[len(e.undo)-1]
		if c, ok := top.cmd.(Coalescer); ok && !top.initial && top.cmd.Kind() == cmd.Kind() && now.Sub(top.at) <= e.coalesceWindow {
			if c.CoalesceWith(cmd) {
				e.undo[len(e.undo)-1].at = now
				return
			}
		}
	}
	e.undo = append(e.undo, entry{cmd: cmd, at: now})
}

func (e *Engine) clearRedo() {
	for _, r := range e.redo {
		r.cmd.Release()
	}
	e.redo = e.redo[:0]
}

// Undo pops and reverses the most recent command, pushing it onto the
// redo stack. Returns false if there is nothing to undo. The initial
// Selection pushed by PushInitial is never popped.
func (e *Engine) Undo() (bool, error) {
	if len(e.undo) == 0 {
		return false, nil
	}
	if e.hasInitial && len(e.undo) <= 1 {
		return false, nil
	}
	e.changing = true
	defer func() { e.changing = false }()

	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	if err := last.cmd.Undo(); err != nil {
		e.undo = append(e.undo, last)
		return false, err
	}
	e.redo = append(e.redo, entry{cmd: last.cmd, at: e.now()})
	return true, nil
}

// Redo pops and reapplies the most recently undone command, pushing it
// back onto the undo stack. Returns false if there is nothing to redo.
func (e *Engine) Redo() (bool, error) {
	if len(e.redo) == 0 {
		return false, nil
	}
	e.changing = true
	defer func() { e.changing = false }()

	last := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	if err := last.cmd.Redo(); err != nil {
		e.redo = append(e.redo, last)
		return false, err
	}
	e.undo = append(e.undo, entry{cmd: last.cmd, at: e.now()})
	return true, nil
}

// IsChanging reports whether the engine is currently mid-undo/redo
//.
func (e *Engine) IsChanging() bool { return e.changing }

// CanUndo reports whether Undo would do anything.
func (e *Engine) CanUndo() bool {
	if e.hasInitial {
		return len(e.undo) > 1
	}
	return len(e.undo) > 0
}

// CanRedo reports whether Redo would do anything.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Clear discards every command on both stacks, releasing their spilled
// payloads.
func (e *Engine) Clear() {
	for _, u := range e.undo {
		u.cmd.Release()
	}
	for _, r := range e.redo {
		r.cmd.Release()
	}
	e.undo = nil
	e.redo = nil
}

// Depth returns the current (undoCount, redoCount) stack sizes.
func (e *Engine) Depth() (int, int) {
	return len(e.undo), len(e.redo)
}
