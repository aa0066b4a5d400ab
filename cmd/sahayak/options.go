package main

import (
	"github.com/spf13/cobra"

	"github.com/opencivic/sahayak/internal/cli"
)

// optionsFromFlags builds RunOptions from the persistent flags and resolves
// them against the environment.
func optionsFromFlags(cmd *cobra.Command) (cli.RunOptions, error) {
	opts := cli.RunOptions{}
	opts.CatalogPath, _ = cmd.Flags().GetString("catalog")
	opts.Store, _ = cmd.Flags().GetString("store")
	opts.FilePath, _ = cmd.Flags().GetString("file-path")
	opts.RedisURL, _ = cmd.Flags().GetString("redis-url")
	opts.SessionTTL, _ = cmd.Flags().GetDuration("session-ttl")
	opts.Debug, _ = cmd.Flags().GetBool("debug")

	if err := opts.Resolve(); err != nil {
		return cli.RunOptions{}, err
	}
	return opts, nil
}
