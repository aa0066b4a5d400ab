package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sahayak",
	Short: "Sahayak is a dialogue engine for benefit scheme eligibility",
	Long: `Sahayak guides callers through government benefit scheme applications:
it collects the answers a scheme needs, checks eligibility against published
rules, and routes uncertain cases to human review.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("catalog", "", "Path to the scheme catalog (YAML file or loam directory)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis (default memory, redis if SAHAYAK_REDIS_URL is set)")
	rootCmd.PersistentFlags().String("file-path", "", "Base directory for the file store")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis connection URL (redis://...)")
	rootCmd.PersistentFlags().Duration("session-ttl", 0, "Session expiry (0 = never)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
