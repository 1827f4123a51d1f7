package cli

import (
	"fmt"
	"os"

	"github.com/HartBrook/shrink/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  "Prints the configuration in use, with defaults filled in for anything the file leaves out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(g.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), g.configPath)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, g, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigInit(cmd *cobra.Command, g *globalOptions, force bool) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(g.configPath); err == nil && !force {
		printWarning(out, "Config already exists at %s", g.configPath)
		printInfo(out, "Hint", "use --force to overwrite it")
		return nil
	}

	if err := config.SaveTo(config.Default(), g.configPath); err != nil {
		return err
	}
	printSuccess(out, "Wrote %s", g.configPath)
	return nil
}
