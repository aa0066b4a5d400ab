package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencivic/sahayak"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sahayak",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sahayak version %s\n", sahayak.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
