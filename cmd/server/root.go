package main

import (
	"worldchat/config"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "worldchat",
		Short:        "worldchat API server and presence gateway",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (yaml, toml or json)")

	load := func() (*config.Config, error) { return config.Load(configPath) }
	rootCmd.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
	)
	return rootCmd
}
