package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://vtree.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Render failed",
		Detail:   "The component's render function panicked or returned an error. Its output was replaced by an inline error indicator; sibling components were unaffected.",
		DocURL:   docBase + "E001",
	},
	"E002": {
		Category:   CategoryHook,
		Message:    "Hook order changed",
		Detail:     "Hooks must be called in the same order, with the same types, on every render of a component. The scope's subtree was torn down to protect its hook storage.",
		Suggestion: "Do not call hooks inside conditions, loops or early returns",
		DocURL:     docBase + "E002",
	},
	"E003": {
		Category: CategoryHook,
		Message:  "Hook used outside render",
		Detail:   "Hooks can only be called with the render context passed to a component's render function, while that render is in progress.",
		DocURL:   docBase + "E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Scope no longer alive",
		Detail:   "A scope identity was referenced after the scope was unmounted. The request was ignored.",
		DocURL:   docBase + "E004",
	},
	"E005": {
		Category: CategoryBackend,
		Message:  "Backend failed to apply mutation batch",
		Detail:   "The renderer backend rejected a batch. The logical tree was kept; request a full rebuild to resynchronise the backend.",
		DocURL:   docBase + "E005",
	},
	"E006": {
		Category:   CategoryValidation,
		Message:    "Duplicate key among siblings",
		Detail:     "Two siblings share the same key. Only the first is matched across renders; the duplicate is recreated every render.",
		Suggestion: "Use a stable unique identifier from your data as the key",
		DocURL:     docBase + "E006",
	},
	"E007": {
		Category: CategoryRuntime,
		Message:  "Tick budget exceeded",
		Detail:   "More scopes were dirty than a single tick may render. The remainder was deferred to the next tick.",
		DocURL:   docBase + "E007",
	},
	"E008": {
		Category: CategoryRuntime,
		Message:  "Listener panicked",
		Detail:   "An event listener panicked. The event was dropped; state changes made before the panic are still rendered.",
		DocURL:   docBase + "E008",
	},
	"E009": {
		Category: CategoryRuntime,
		Message:  "Effect cleanup panicked",
		Detail:   "A cleanup callback panicked. Remaining cleanups were still run.",
		DocURL:   docBase + "E009",
	},
	"E010": {
		Category: CategoryRuntime,
		Message:  "Runtime stopped",
		Detail:   "The runtime's event loop has exited and no longer accepts work.",
		DocURL:   docBase + "E010",
	},
	"E011": {
		Category:   CategoryRuntime,
		Message:    "Impure render detected",
		Detail:     "Rendering the same scope twice with identical props and hook state produced different trees.",
		Suggestion: "Move side effects into UseEffect or event listeners",
		DocURL:     docBase + "E011",
	},

	// ============================================
	// Configuration Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "Could not find vtree.json or vtree.yaml in the current directory or any parent directory.",
		DocURL:   docBase + "E020",
	},
	"E021": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file contains invalid syntax or values.",
		DocURL:   docBase + "E021",
	},
	"E022": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Durations are written as Go duration strings such as \"16ms\" or \"1m30s\".",
		DocURL:   docBase + "E022",
	},

	// ============================================
	// CLI Errors (E040-E049)
	// ============================================

	"E040": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
		Detail:   "The demo name does not match any built-in scenario.",
		DocURL:   docBase + "E040",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
