package cmd

import (
	"github.com/spf13/cobra"

	"warehouse.GO/core/registry"
)

// Register adds an extension command. Call from init(); panics once Apply has run.
func Register(c *cobra.Command) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: locked (register only during init before Apply)")
	}
	registry.Append(registry.GlobalRegistry, registry.KeyRegistryCmd, c)
}

// Apply attaches the registered commands to the root command once.
func Apply() {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		return
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
	rootCmd.AddCommand(registry.List[*cobra.Command](registry.GlobalRegistry, registry.KeyRegistryCmd)...)
}
