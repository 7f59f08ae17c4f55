package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Tools for testing message decomposition and composition",
}

func Execute() error {
	return rootCmd.Execute()
}
