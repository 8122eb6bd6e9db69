package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"findash/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.toml next to the executable",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.GetExeDir()
		if err != nil {
			return err
		}
		path := config.ConfigPath(dir)
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.toml")
}
