package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionVerbose bool

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the batchrvt build version",
		Long: `Show the batchrvt build version.

Worker log files do not record which build produced them, so include this
output when reporting a problem with a session.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "batchrvt version %s\n", rootCmd.Version)
			if versionVerbose {
				fmt.Fprintf(out, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
	cmd.Flags().BoolVar(&versionVerbose, "verbose", false, "Also show the Go runtime and platform")
	return cmd
}
