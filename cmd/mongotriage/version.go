package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

// runVersion handles the version command
func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "mongotriage by Fyrsmith Labs\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Version:    %s\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "Commit:     %s\n", gitCommit)
	fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", buildDate)
}
