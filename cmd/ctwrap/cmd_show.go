package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ctwrap/internal/store"
)

var showFlags struct {
	metadata bool
}

var showCmd = &cobra.Command{
	Use:   "show <artifact>",
	Short: "List the result groups of an output container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := store.Inspect(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, group := range sum.Groups {
			fmt.Fprintln(out, group)
		}
		if showFlags.metadata {
			if sum.Metadata == nil {
				fmt.Fprintln(out, "(no metadata)")
			} else {
				fmt.Fprintln(out, string(sum.Metadata))
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showFlags.metadata, "metadata", false, "Also print the run metadata record")
}
