package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencivic/sahayak/pkg/scheme"
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List and validate the scheme catalog",
	Long:  `Loads the catalog, validates every scheme definition, and prints what callers can apply for.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := optionsFromFlags(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		var catalog *scheme.StaticCatalog
		if info, statErr := os.Stat(opts.CatalogPath); statErr == nil && info.IsDir() {
			catalog, err = scheme.LoadLoam(cmd.Context(), opts.CatalogPath)
		} else {
			catalog, err = scheme.LoadFile(opts.CatalogPath)
		}
		if err != nil {
			fmt.Printf("Catalog invalid: %v\n", err)
			os.Exit(1)
		}

		names := catalog.Names()
		fmt.Printf("Catalog OK: %d scheme(s)\n\n", len(names))
		for _, name := range names {
			sch, ok := catalog.GetScheme(name)
			if !ok {
				continue
			}
			fmt.Printf("  %s (%s)\n", sch.Title(), sch.Name)
			if sch.Description != "" {
				fmt.Printf("    %s\n", sch.Description)
			}
			fmt.Printf("    %d question(s), %d rule(s)\n", len(sch.Slots), len(sch.Rules.Mandatory))
		}
	},
}

func init() {
	rootCmd.AddCommand(schemesCmd)
}
