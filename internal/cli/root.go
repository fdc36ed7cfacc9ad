// Package cli implements networkctl, the operator command line for the
// distributor network.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version can be overridden at build time via:
// go build -ldflags "-X koppara_backend/internal/cli.version=1.2.3"
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "networkctl",
	Short:         "Operate the distributor network",
	Long:          color.CyanString("networkctl") + "\nInspect and repair the sponsor graph and read funnel reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("networkctl %s\n", version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
