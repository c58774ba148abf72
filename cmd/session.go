package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hopper/internal/session"
	"github.com/zjrosen/hopper/internal/ui/chooser"
)

var sessionCmd = &cobra.Command{
	Use:   "session FILE",
	Short: "Hop interactively through a file",
	Long: `Open FILE in an interactive session. Type help at the prompt for the
command list. With the watch-registry flag on (the default) edits to the
registry file from other processes are picked up immediately.

Examples:
  hopper session main.go
  hopper --debug session main.go   # then "log on" to echo the debug log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-" {
			return errors.New("session reads commands from stdin; pass a file")
		}
		text, err := readText(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(ctx) }()

		opts := []session.Option{
			session.WithName(args[0]),
			session.WithInput(cmd.InOrStdin()),
			session.WithOutput(cmd.OutOrStdout()),
		}
		// Off a terminal the session's own numbered prompt is used, since it
		// shares the command reader.
		if cmd.InOrStdin() == os.Stdin && isTerminal(os.Stdin) && isTerminal(os.Stderr) {
			opts = append(opts, session.WithChooser(chooser.NewChooser()))
		}
		return session.New(a, text, opts...).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
