package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// configCommand creates the config command that prints the effective
// configuration.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML.

The output is the --config file (or the default config file when present)
with every default filled in, so it can be saved and edited as a starting
point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(os.Stdout)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := configDir()
			if err != nil {
				return err
			}
			printKeyValue("config", filepath.Join(dir, configFile))
			return nil
		},
	})

	return cmd
}
