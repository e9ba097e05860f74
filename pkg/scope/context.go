package scope

import "github.com/vango-dev/vtree/pkg/vdom"

// Provide makes value visible to descendants of the rendering scope under
// key. When the value changes, descendants that read key are marked dirty.
func Provide[T any](c *Ctx, key any, value T) {
	if !c.active {
		panic(&outsideRenderError{hook: HookNone})
	}
	s := c.scope
	if s.values == nil {
		s.values = make(map[any]any)
	}
	old, had := s.values[key]
	s.values[key] = value
	if !had || vdom.PropsEqual(old, value) {
		return
	}
	for id := range s.consumers[key] {
		if !c.arena.MarkDirty(id) {
			delete(s.consumers[key], id)
			continue
		}
		c.arena.invalidated = append(c.arena.invalidated, id)
	}
}

// UseContext returns the value provided under key by the nearest ancestor.
// The rendering scope is subscribed to that provider.
func UseContext[T any](c *Ctx, key any) (T, bool) {
	if !c.active {
		panic(&outsideRenderError{hook: HookNone})
	}
	var zero T
	for id := c.scope.parent; id != NoID; {
		p, ok := c.arena.Get(id)
		if !ok {
			break
		}
		if v, ok := p.values[key]; ok {
			if p.consumers == nil {
				p.consumers = make(map[any]map[ID]struct{})
			}
			if p.consumers[key] == nil {
				p.consumers[key] = make(map[ID]struct{})
			}
			p.consumers[key][c.scope.id] = struct{}{}
			t, ok := v.(T)
			if !ok {
				return zero, false
			}
			return t, true
		}
		id = p.parent
	}
	return zero, false
}
