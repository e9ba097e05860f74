package mirror

import (
	"sort"
	"strings"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Markup renders a static node tree in the format used by Tree.HTML.
// Component nodes render as an empty comment carrying the component name;
// placeholders render nothing.
func Markup(node *vdom.Node) string {
	var sb strings.Builder
	writeVNode(&sb, node)
	return sb.String()
}

func writeVNode(sb *strings.Builder, n *vdom.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case vdom.KindText:
		sb.WriteString(escapeHTML(n.Text))
	case vdom.KindFragment:
		for _, c := range n.Children {
			writeVNode(sb, c)
		}
	case vdom.KindComponent:
		sb.WriteString("<!--" + n.Name() + "-->")
	case vdom.KindElement:
		vals := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			if a.Name == "" {
				continue
			}
			if a.Absent {
				delete(vals, a.Name)
			} else {
				vals[a.Name] = a.Value
			}
		}
		names := make([]string, 0, len(vals))
		for name := range vals {
			names = append(names, name)
		}
		sort.Strings(names)
		attrs := make([][2]string, len(names))
		for i, name := range names {
			attrs[i] = [2]string{name, vals[name]}
		}
		openTag(sb, n.Tag, attrs)
		if vdom.IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.Children {
			writeVNode(sb, c)
		}
		sb.WriteString("</" + n.Tag + ">")
	}
}

func openTag(sb *strings.Builder, tag string, attrs [][2]string) {
	sb.WriteString("<")
	sb.WriteString(tag)
	for _, a := range attrs {
		sb.WriteString(" ")
		sb.WriteString(a[0])
		sb.WriteString(`="`)
		sb.WriteString(EscapeAttr(a[1]))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
}

func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// EscapeAttr escapes s for use inside a double-quoted attribute value.
func EscapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
