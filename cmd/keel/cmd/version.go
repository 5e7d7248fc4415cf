package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	keel "github.com/keeldata/keel"
)

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "keel %s %s/%s %s\n",
			keel.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
