// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is an application command produced by input.
type Action int

const (
	ActionNone Action = iota
	// ActionQuit ends the main loop.
	ActionQuit
	// ActionToggleWorkaround flips the vertex attribute workaround and rebuilds models.
	ActionToggleWorkaround
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionToggleWorkaround:
		return "toggle-workaround"
	default:
		return "none"
	}
}

// Input handles all input processing.
type Input struct {
	actions []Action
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		actions: make([]Action, 0, 4),
	}
}

// Update polls SDL events and converts them to actions.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.actions = i.actions[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}

	return i.Quit()
}

// handle records the action for a single event. Quit keys act on key down,
// the workaround toggle on key up so a held key toggles once.
func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.actions = append(i.actions, ActionQuit)

	case *sdl.KeyboardEvent:
		switch {
		case e.Type == sdl.KEYDOWN && (e.Keysym.Sym == sdl.K_ESCAPE || e.Keysym.Sym == sdl.K_q):
			i.actions = append(i.actions, ActionQuit)
		case e.Type == sdl.KEYUP && e.Keysym.Sym == sdl.K_r:
			i.actions = append(i.actions, ActionToggleWorkaround)
		}
	}
}

// Actions returns the actions from the last Update, in event order.
func (i *Input) Actions() []Action {
	return i.actions
}

// Quit reports whether a quit was requested in the last Update.
func (i *Input) Quit() bool {
	for _, a := range i.actions {
		if a == ActionQuit {
			return true
		}
	}
	return false
}
