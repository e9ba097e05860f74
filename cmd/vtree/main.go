package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌┬┐┬─┐┌─┐┌─┐
  ╚╗╔╝ │ ├┬┘├┤ ├┤
   ╚╝  ┴ ┴└─└─┘└─┘
`

// colors is false when stdout is not a terminal.
var colors = true

func main() {
	if !isTerminal(os.Stdout) {
		colors = false
		errors.DisableColors()
	}

	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "Virtual tree reconciliation engine",
		Long: `vtree renders component trees and keeps a backend in sync with them.

Components describe UI as virtual nodes. The runtime re-renders the
scopes whose state changed, diffs the results and ships the minimal
mutation batch to the backend. Commands:

  • demo   play a scripted session and print every batch
  • serve  mount a demo app and stream batches over WebSocket
  • init   write a default vtree.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// paint wraps text in an ANSI color when colors are enabled.
func paint(code, text string) string {
	if !colors {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}
