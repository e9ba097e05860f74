// Package demo holds the sample component trees used by the vtree CLI and
// scripted scenarios that drive them against the in-memory backend.
package demo
