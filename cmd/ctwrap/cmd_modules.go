package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ctwrap/internal/sim"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List bundled simulation modules",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range sim.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
