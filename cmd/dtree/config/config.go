// Package configcmder provides the config command for managing persistent
// dtree configuration stored in the .dtree/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent dtree configuration.

Configuration is stored as config.toml in the .dtree/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.root, session.project, session.retention_days, export.format

Use subcommands to get, set, or list configuration values:
  dtree config set <key> <value>    Set a configuration value
  dtree config get <key>            Get a configuration value
  dtree config list                 List all configuration values

Examples:
  dtree config set session.project myproject
  dtree config set session.retention_days 14
  dtree config get export.format
  dtree config list`

const configShortDesc string = "Manage persistent dtree configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
