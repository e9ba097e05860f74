package vdom

import "testing"

func TestListenerFactories(t *testing.T) {
	h := func(*Event) {}
	tests := []struct {
		l    Listener
		want string
	}{
		{OnClick(h), "click"},
		{OnInput(h), "input"},
		{OnChange(h), "change"},
		{OnSubmit(h), "submit"},
		{OnKeyDown(h), "keydown"},
		{On("custom", h), "custom"},
	}
	for _, tt := range tests {
		if tt.l.Event != tt.want {
			t.Errorf("Event = %q, want %q", tt.l.Event, tt.want)
		}
		if tt.l.Handler == nil {
			t.Errorf("%s handler is nil", tt.want)
		}
	}
}

func TestPayloadString(t *testing.T) {
	if (&Event{Payload: "v"}).PayloadString() != "v" {
		t.Error("string payload should be returned")
	}
	if (&Event{Payload: 3}).PayloadString() != "" {
		t.Error("non-string payload should return empty")
	}
	var nilEvent *Event
	if nilEvent.PayloadString() != "" {
		t.Error("nil event should return empty")
	}
}
