package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleanstore/internal/config"
)

func newInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Long: `Create ~/.config/cleanstore/config.yaml (or the file named by --config)
populated with the defaults so it can be edited manually.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := config.HomeDir()
			if err != nil {
				return err
			}
			path, err := configFile(*configPath, home)
			if err != nil {
				return err
			}

			if err := config.WriteDefault(path, force); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Wrote default config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
