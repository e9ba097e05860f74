package vdom

// Event is delivered by the event source and handed to listeners.
type Event struct {
	Name    string // "click", "input", ...
	Target  Handle // Originating node
	Payload any    // Backend-specific data (e.g. input value)
}

// Handler is an event listener callback.
type Handler func(e *Event)

// Listener attaches a handler to an element for one event name.
type Listener struct {
	Event   string
	Handler Handler
}

// On creates a listener for any event name.
func On(name string, handler Handler) Listener {
	return Listener{Event: name, Handler: handler}
}

// Mouse events

// OnClick handles click events.
func OnClick(handler Handler) Listener { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler Handler) Listener { return On("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler Handler) Listener { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler Handler) Listener { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler Handler) Listener { return On("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler Handler) Listener { return On("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler Handler) Listener { return On("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler Handler) Listener { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler Handler) Listener { return On("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler Handler) Listener { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler Handler) Listener { return On("blur", handler) }

// PayloadString returns the payload as a string, or "" if it is not one.
func (e *Event) PayloadString() string {
	if e == nil {
		return ""
	}
	s, _ := e.Payload.(string)
	return s
}
