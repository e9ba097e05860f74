package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		dir    string
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(dir) && !force {
				return errors.New("E021").
					WithDetail("A configuration file already exists in " + dir).
					WithSuggestion("Pass --force to overwrite it")
			}
			name := "vtree.yaml"
			if format == "json" {
				name = "vtree.json"
			}
			path := filepath.Join(dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the configuration into")
	cmd.Flags().StringVar(&format, "format", "yaml", "Configuration format (yaml or json)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return cmd
}
