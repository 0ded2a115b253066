package main

import (
	"fmt"
	"runtime"

	"buildbump/internal/config"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the buildbump version",
	Args:  cobra.NoArgs,
	// Settings are not needed, and a broken settings file must not hide the version.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "buildbump %s (%s, %s/%s)\n",
			config.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
