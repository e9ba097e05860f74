package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// Attr is a single attribute. An Absent attribute is listed but not present:
// absence is diffed as add/remove, never as a value change.
type Attr struct {
	Name   string
	Value  string
	Absent bool
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}

// A creates an attribute. The value source is resolved immediately, which
// during render means at render time: strings, fmt.Stringer values,
// func() string, bools and numbers are accepted. A nil value produces an
// absent attribute.
func A(name string, value any) Attr {
	if value == nil {
		return Attr{Name: name, Absent: true}
	}
	return Attr{Name: name, Value: ValueString(value)}
}

// Removed creates an explicitly absent attribute.
func Removed(name string) Attr {
	return Attr{Name: name, Absent: true}
}

// BoolAttr is present with an empty value when on is true and absent
// otherwise, matching HTML boolean attribute semantics.
func BoolAttr(name string, on bool) Attr {
	if !on {
		return Removed(name)
	}
	return Attr{Name: name}
}

// ValueString converts an attribute or text value source to a string.
func ValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case func() string:
		return val()
	case fmt.Stringer:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return A("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return A("class", strings.Join(classes, " ")) }

// ClassIf sets the class attribute when cond is true and removes it otherwise.
func ClassIf(cond bool, classes ...string) Attr {
	if !cond {
		return Removed("class")
	}
	return Class(classes...)
}

// Style sets the style attribute.
func Style(style string) Attr { return A("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key string, value any) Attr { return A("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return A("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return A("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return A("aria-hidden", hidden) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return A("title", title) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return A("href", url) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return A("name", name) }

// Value sets the value attribute.
func Value(value any) Attr { return A("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return A("type", t) }

// PlaceholderText sets the placeholder attribute.
func PlaceholderText(text string) Attr { return A("placeholder", text) }

// Disabled sets or removes the disabled attribute.
func Disabled(on bool) Attr { return BoolAttr("disabled", on) }

// Checked sets or removes the checked attribute.
func Checked(on bool) Attr { return BoolAttr("checked", on) }

// Hidden sets or removes the hidden attribute.
func Hidden(on bool) Attr { return BoolAttr("hidden", on) }

// keyAttr is the pseudo attribute consumed by element builders.
const keyAttr = "key"

// Key sets the reconciliation key of the element it is passed to. It never
// reaches the backend as an attribute.
func Key(key any) Attr {
	return Attr{Name: keyAttr, Value: ValueString(key)}
}
