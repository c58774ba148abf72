package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/hopper/internal/navigation"
	"github.com/zjrosen/hopper/internal/presentation"
	"github.com/zjrosen/hopper/internal/selection"
	"github.com/zjrosen/hopper/internal/ui/chooser"
)

var (
	hopOffset   int
	hopCount    int
	hopBackward bool
	hopInstance string
	hopJSON     bool
)

var hopCmd = &cobra.Command{
	Use:   "hop FILE",
	Short: "Hop once from an offset and report where the cursor lands",
	Long: `Hop from --offset through the occurrences of an instance in FILE ("-"
reads stdin). Without --instance a chooser is shown: a picker on a
terminal, a numbered prompt otherwise.

Running out of matches is not an error; the report says
"this is the last instance (n/n)" or "no next instance (n total)".

Examples:
  hopper hop main.go --instance todo
  hopper hop main.go --instance todo --offset 120 --count 3
  hopper hop main.go --instance todo --offset 120 --backward --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(cmd.Context()) }()

		if hopInstance != "" {
			if err := a.State().Set(hopInstance, a.Service()); err != nil {
				return err
			}
		}

		buf := a.NewBuffer(text)
		buf.SetPosition(hopOffset)

		dir := navigation.Forward
		if hopBackward {
			dir = navigation.Backward
		}
		res, err := a.Engine(chooserFor(cmd, args[0] == "-")).Hop(cmd.Context(), buf, dir, hopCount)
		if err != nil {
			return err
		}

		line, col := buf.LineCol(res.Position)
		dto := presentation.FromHopResult(res, line, col)
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if hopJSON {
			return formatter.FormatHop(dto)
		}
		return formatter.WriteHop(dto)
	},
}

func init() {
	hopCmd.Flags().IntVarP(&hopOffset, "offset", "o", 0, "starting character offset")
	hopCmd.Flags().IntVarP(&hopCount, "count", "n", 1, "number of occurrences to hop; negative reverses")
	hopCmd.Flags().BoolVarP(&hopBackward, "backward", "b", false, "hop toward the start of the text")
	hopCmd.Flags().StringVarP(&hopInstance, "instance", "i", "", "instance to hop with (default: choose)")
	hopCmd.Flags().BoolVar(&hopJSON, "json", false, "output JSON")
	rootCmd.AddCommand(hopCmd)
}

func readText(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // G304: user-supplied input file
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// chooserFor picks the interactive picker when stdin and stderr are
// terminals and a numbered prompt otherwise. When the text itself came from
// stdin there is nothing left to answer with, so choosing is cancelled.
func chooserFor(cmd *cobra.Command, stdinConsumed bool) selection.Chooser {
	if stdinConsumed {
		return selection.ChooserFunc(func(context.Context, []string) (string, error) {
			return "", fmt.Errorf("%w: pass --instance when reading text from stdin", selection.ErrCancelled)
		})
	}
	if isTerminal(os.Stdin) && isTerminal(os.Stderr) && cmd.InOrStdin() == os.Stdin {
		return chooser.NewChooser()
	}
	return selection.NewPromptChooser(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}
