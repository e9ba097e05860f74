package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// buildDetails is what the version command reports.
type buildDetails struct {
	Version   string
	Commit    string
	Date      string
	Module    string
	GoVersion string
	Deps      []*debug.Module
}

// readBuildDetails starts from the linker-set variables and fills whatever
// they leave at their defaults from the embedded build info.
func readBuildDetails(bi *debug.BuildInfo, ok bool) buildDetails {
	d := buildDetails{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
	if !ok || bi == nil {
		return d
	}
	d.Module = bi.Main.Path
	if bi.GoVersion != "" {
		d.GoVersion = bi.GoVersion
	}
	if d.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		d.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if d.Commit == "none" {
				d.Commit = s.Value
			}
		case "vcs.time":
			if d.Date == "unknown" {
				d.Date = s.Value
			}
		}
	}
	d.Deps = bi.Deps
	return d
}

func writeDeps(w io.Writer, deps []*debug.Module) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Module", "Version"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, m := range deps {
		v := m.Version
		if m.Replace != nil {
			v += " => " + m.Replace.Path + " " + m.Replace.Version
		}
		table.Append([]string{m.Path, v})
	}
	table.Render()
}

func versionCmd() *cobra.Command {
	var short, deps bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version, commit, and build information for the vtree CLI.`,
		Run: func(cmd *cobra.Command, args []string) {
			d := readBuildDetails(debug.ReadBuildInfo())
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, d.Version)
				return
			}

			printBanner()
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Version:    %s\n", d.Version)
			fmt.Fprintf(out, "  Commit:     %s\n", d.Commit)
			fmt.Fprintf(out, "  Built:      %s\n", d.Date)
			if d.Module != "" {
				fmt.Fprintf(out, "  Module:     %s\n", d.Module)
			}
			fmt.Fprintf(out, "  Go version: %s\n", d.GoVersion)
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintln(out)
			if deps {
				writeDeps(out, d.Deps)
				fmt.Fprintln(out)
			}
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	cmd.Flags().BoolVar(&deps, "deps", false, "Also list the dependency versions compiled in")

	return cmd
}
