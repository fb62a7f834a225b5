// cmd/pathoscope/version.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pathoscope/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pathoscope version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
