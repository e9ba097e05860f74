package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/vtree/internal/mirror"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// HTMLer is anything that renders to markup: a *Backend or a Static tree.
type HTMLer interface {
	HTML() string
}

// Static adapts a component-free node tree to HTMLer.
type Static struct {
	Node *vdom.Node
}

// HTML implements HTMLer.
func (s Static) HTML() string {
	return Markup(s.Node)
}

// ExpectHTML asserts that src renders exactly want.
func ExpectHTML(t testing.TB, src HTMLer, want string) {
	t.Helper()
	if got := src.HTML(); got != want {
		t.Errorf("HTML() =\n%s\nwant\n%s", got, want)
	}
}

// ExpectContains asserts that rendered output contains expected.
//
//	vtest.ExpectContains(t, backend, "Welcome Admin")
func ExpectContains(t testing.TB, src HTMLer, expected string) {
	t.Helper()
	html := src.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain unexpected.
func ExpectNotContains(t testing.TB, src HTMLer, unexpected string) {
	t.Helper()
	html := src.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a tag.
func ExpectElement(t testing.TB, src HTMLer, tag string) {
	t.Helper()
	html := src.HTML()
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains attr="value".
func ExpectAttribute(t testing.TB, src HTMLer, attr, value string) {
	t.Helper()
	html := src.HTML()
	needle := attr + `="` + mirror.EscapeAttr(value) + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// OpCounts tallies mutations by op.
func OpCounts(muts []vdom.Mutation) map[vdom.Op]int {
	out := make(map[vdom.Op]int)
	for _, m := range muts {
		out[m.Op]++
	}
	return out
}

// Creates counts create mutations.
func Creates(muts []vdom.Mutation) int {
	n := 0
	for _, m := range muts {
		if m.Op.IsCreate() {
			n++
		}
	}
	return n
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
