package commands

import "github.com/spf13/cobra"

// NewModulesCommand creates the modules command.
func NewModulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the modules scripts can load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			return cc.Renderer.RenderModules(cc.Registry.All())
		},
	}
}
