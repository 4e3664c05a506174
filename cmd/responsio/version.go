package main

import (
	"fmt"

	"github.com/aretw0/responsio"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of responsio",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "responsio version %s\n", responsio.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
