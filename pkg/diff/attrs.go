package diff

import "github.com/vango-dev/vtree/pkg/vdom"

// effectiveAttrs resolves an attribute list to the set present on the
// backend node. Later entries win; an Absent entry removes the name.
// names keeps first-occurrence order and may include names missing from
// vals.
func effectiveAttrs(attrs []vdom.Attr) (names []string, vals map[string]string) {
	if len(attrs) == 0 {
		return nil, nil
	}
	vals = make(map[string]string, len(attrs))
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if a.Name == "" {
			continue
		}
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
		if a.Absent {
			delete(vals, a.Name)
			continue
		}
		vals[a.Name] = a.Value
	}
	return names, vals
}

// diffAttrs emits removals for names no longer present, then sets for new
// or changed values. Presence is compared by name, not position.
func (d *Differ) diffAttrs(h vdom.Handle, prev, next []vdom.Attr) {
	oldNames, oldVals := effectiveAttrs(prev)
	newNames, newVals := effectiveAttrs(next)
	for _, name := range oldNames {
		if _, had := oldVals[name]; !had {
			continue
		}
		if _, keep := newVals[name]; !keep {
			d.emit(vdom.Mutation{Op: vdom.OpRemoveAttr, Handle: h, Name: name})
		}
	}
	for _, name := range newNames {
		v, ok := newVals[name]
		if !ok {
			continue
		}
		if ov, had := oldVals[name]; had && ov == v {
			continue
		}
		d.emit(vdom.Mutation{Op: vdom.OpSetAttr, Handle: h, Name: name, Value: v})
	}
}

// listenerOrder returns the distinct event names of ls in first-occurrence
// order.
func listenerOrder(ls []vdom.Listener) []string {
	var out []string
	seen := make(map[string]bool, len(ls))
	for _, l := range ls {
		if l.Event == "" || l.Handler == nil || seen[l.Event] {
			continue
		}
		seen[l.Event] = true
		out = append(out, l.Event)
	}
	return out
}

// diffListeners updates the listener registry for m. Only subscription
// changes reach the backend; a new handler for an existing event is
// swapped in place.
func (d *Differ) diffListeners(m *mount, prev, next []vdom.Listener) {
	if len(prev) == 0 && len(next) == 0 {
		return
	}
	want := make(map[string]vdom.Handler, len(next))
	for _, l := range next {
		if l.Event != "" && l.Handler != nil {
			want[l.Event] = l.Handler
		}
	}
	have := d.listeners[m.handle]
	for _, ev := range listenerOrder(prev) {
		if _, keep := want[ev]; !keep {
			delete(have, ev)
			d.emit(vdom.Mutation{Op: vdom.OpRemoveListener, Handle: m.handle, Name: ev})
		}
	}
	if len(want) == 0 {
		delete(d.listeners, m.handle)
		return
	}
	if have == nil {
		have = make(map[string]Binding, len(want))
		d.listeners[m.handle] = have
	}
	for _, ev := range listenerOrder(next) {
		if _, ok := have[ev]; !ok {
			d.emit(vdom.Mutation{Op: vdom.OpSetListener, Handle: m.handle, Name: ev})
		}
		have[ev] = Binding{Scope: m.owner, Handler: want[ev]}
	}
}
