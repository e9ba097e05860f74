package vtest

import (
	"github.com/vango-dev/vtree/internal/mirror"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Markup renders a static node tree in the format used by Backend.HTML.
// Component nodes render as an empty comment carrying the component name;
// placeholders render nothing.
func Markup(node *vdom.Node) string {
	return mirror.Markup(node)
}
