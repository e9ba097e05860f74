package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element node. Arguments can be: nil, Attr, []Attr, Listener,
// []Listener, *Node, []*Node, Children or string (shorthand for a text child).
// Nil arguments are ignored so that attributes can be conditional.
func El(tag string, args ...any) *Node {
	node := &Node{
		Kind: KindElement,
		Tag:  tag,
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue

		case Attr:
			node.addAttr(v)

		case []Attr:
			for _, a := range v {
				node.addAttr(a)
			}

		case Listener:
			if v.Event != "" && v.Handler != nil {
				node.Listeners = append(node.Listeners, v)
			}

		case []Listener:
			for _, l := range v {
				if l.Event != "" && l.Handler != nil {
					node.Listeners = append(node.Listeners, l)
				}
			}

		case *Node:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*Node:
			node.Children = appendNodes(node.Children, v)

		case Children:
			node.Children = appendNodes(node.Children, v)

		case string:
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

func (n *Node) addAttr(a Attr) {
	if a.Name == "" {
		return
	}
	if a.Name == keyAttr {
		n.Key = a.Value
		return
	}
	n.Attrs = append(n.Attrs, a)
}

func appendNodes(dst []*Node, src []*Node) []*Node {
	for _, c := range src {
		if c != nil {
			dst = append(dst, c)
		}
	}
	return dst
}

// Structure elements

func Div(args ...any) *Node     { return El("div", args...) }
func Span(args ...any) *Node    { return El("span", args...) }
func P(args ...any) *Node       { return El("p", args...) }
func Section(args ...any) *Node { return El("section", args...) }
func Main(args ...any) *Node    { return El("main", args...) }
func Header(args ...any) *Node  { return El("header", args...) }
func Footer(args ...any) *Node  { return El("footer", args...) }
func Nav(args ...any) *Node     { return El("nav", args...) }
func H1(args ...any) *Node      { return El("h1", args...) }
func H2(args ...any) *Node      { return El("h2", args...) }
func H3(args ...any) *Node      { return El("h3", args...) }
func Strong(args ...any) *Node  { return El("strong", args...) }
func Em(args ...any) *Node      { return El("em", args...) }
func Pre(args ...any) *Node     { return El("pre", args...) }
func Code(args ...any) *Node    { return El("code", args...) }

// Lists

func Ul(args ...any) *Node { return El("ul", args...) }
func Ol(args ...any) *Node { return El("ol", args...) }
func Li(args ...any) *Node { return El("li", args...) }

// Tables

func Table(args ...any) *Node { return El("table", args...) }
func Tr(args ...any) *Node    { return El("tr", args...) }
func Td(args ...any) *Node    { return El("td", args...) }
func Th(args ...any) *Node    { return El("th", args...) }

// Forms and interactive elements

func Form(args ...any) *Node     { return El("form", args...) }
func Button(args ...any) *Node   { return El("button", args...) }
func Input(args ...any) *Node    { return El("input", args...) }
func Label(args ...any) *Node    { return El("label", args...) }
func Textarea(args ...any) *Node { return El("textarea", args...) }
func Select(args ...any) *Node   { return El("select", args...) }
func Option(args ...any) *Node   { return El("option", args...) }
func Anchor(args ...any) *Node   { return El("a", args...) }
func Img(args ...any) *Node      { return El("img", args...) }
func Br() *Node                  { return El("br") }
func Hr() *Node                  { return El("hr") }
