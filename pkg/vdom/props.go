package vdom

import "reflect"

// PropsComparer lets props types define their own equality. It is used to
// decide whether a component must re-render when its parent re-renders.
type PropsComparer interface {
	EqualProps(other any) bool
}

// PropsEqual reports whether two props values are equal. Values implementing
// PropsComparer decide for themselves; everything else is compared with
// reflect.DeepEqual, so props containing non-nil funcs always compare unequal.
func PropsEqual(a, b any) bool {
	if c, ok := a.(PropsComparer); ok {
		return c.EqualProps(b)
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return reflect.DeepEqual(a, b)
}
