package cmd

import (
	"fmt"

	"batchrvt/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

// configCmd groups the commands that manage config.yaml.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the orchestrator configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(&appConfig)
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.yaml holding the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := rootConfigPath
		if dir == "" {
			var err error
			if dir, err = config.GetDefaultConfigPath(); err != nil {
				return err
			}
		}
		if exists, err := config.Exists(dir); err != nil {
			return err
		} else if exists && !configInitForce {
			return fmt.Errorf("config.yaml already exists in %s (use --force to overwrite)", dir)
		}
		if err := config.SaveConfig(dir, config.GetDefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config.yaml")
}
