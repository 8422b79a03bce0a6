package cmd

import (
	"os"

	"batchrvt/internal/worker"
	"batchrvt/pkg/logging"

	"github.com/spf13/cobra"
)

const workerCmdName = "worker"

// newWorkerCmd creates the command the orchestrator launches as its child
// process. Flag parsing is left to the worker's own option registry.
func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   workerCmdName + " --settings_file <path> [options]",
		Short: "Run the worker side of a batch session",
		Long: `Runs the worker side of a batch session. This is normally started by
'batchrvt run'; use 'batchrvt worker --help' for its options.

Progress is written to stdout as "hh:mm:ss : message" lines and to the
session log in --log_folder.`,
		DisableFlagParsing: true,
		// stdout and stderr belong to the orchestrator's line protocol.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.InitForCLI(logging.LevelWarn, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{os.Args[0]}, args...)
			if code := worker.New(cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(argv); code != worker.ExitOK {
				return &exitStatusError{Code: code}
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newWorkerCmd())
}
