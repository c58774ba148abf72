package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/presentation"
)

var (
	addRegex     string
	addLiterals  []string
	addPlacement string

	editRename    string
	editRegex     string
	editLiterals  []string
	editPlacement string

	deleteYes bool
	listJSON  bool
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Define a new instance",
	Long: `Define a named instance from a regex or a set of literal strings.

Without --regex or --literal the pattern is read interactively: enter a
regex, or leave it empty and enter literals one per line, ending with an
empty line.

Examples:
  hopper add todo --regex 'TODO|FIXME' --placement start
  hopper add keywords --literal func --literal return --placement end
  hopper add semicolons`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		placement, err := instance.ParsePlacement(addPlacement)
		if err != nil {
			return err
		}

		var pattern instance.Pattern
		switch {
		case cmd.Flags().Changed("regex"):
			pattern = instance.Regex(addRegex)
		case cmd.Flags().Changed("literal"):
			pattern = instance.Literals(addLiterals...)
		default:
			pattern, err = promptPattern(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(cmd.Context()) }()

		if err := a.Service().Add(cmd.Context(), args[0], pattern, placement); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s, placement %s\n", args[0], pattern, placement)
		return err
	},
}

var editCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Change an existing instance",
	Long: `Change the name, pattern or placement of an instance. Parts that are
not given keep their current values. Renaming keeps the instance's position.

Examples:
  hopper edit todo --rename tasks
  hopper edit todo --literal TODO --literal XXX
  hopper edit todo --placement natural`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(cmd.Context()) }()

		current, err := a.Service().Get(args[0])
		if err != nil {
			return err
		}

		newName := current.Name()
		if cmd.Flags().Changed("rename") {
			newName = editRename
		}
		pattern := current.Pattern()
		switch {
		case cmd.Flags().Changed("regex"):
			pattern = instance.Regex(editRegex)
		case cmd.Flags().Changed("literal"):
			pattern = instance.Literals(editLiterals...)
		}
		placement := current.Placement()
		if cmd.Flags().Changed("placement") {
			if placement, err = instance.ParsePlacement(editPlacement); err != nil {
				return err
			}
		}

		if err := a.Service().Edit(cmd.Context(), args[0], newName, pattern, placement); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s: %s, placement %s\n", newName, pattern, placement)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete NAME",
	Aliases: []string{"rm"},
	Short:   "Remove an instance",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(cmd.Context()) }()

		if !a.Service().Has(args[0]) {
			return fmt.Errorf("%q: %w", args[0], instance.ErrNotFound)
		}
		if !deleteYes {
			ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete instance %q?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return err
			}
		}

		if err := a.Service().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return err
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List defined instances",
	Long: `List defined instances in registry order.

Examples:
  hopper list
  hopper list --json | jq '.[].name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(cmd.Context()) }()

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		dtos := presentation.FromDomainInstances(a.Service().List(), "")
		if listJSON {
			return formatter.FormatInstances(dtos)
		}
		return formatter.WriteInstanceTable(dtos)
	},
}

func init() {
	addCmd.Flags().StringVarP(&addRegex, "regex", "r", "", "regular expression to match")
	addCmd.Flags().StringArrayVarP(&addLiterals, "literal", "l", nil, "literal string to match (repeatable)")
	addCmd.Flags().StringVarP(&addPlacement, "placement", "p", "natural", "cursor placement: natural, start or end")
	addCmd.MarkFlagsMutuallyExclusive("regex", "literal")

	editCmd.Flags().StringVar(&editRename, "rename", "", "new name")
	editCmd.Flags().StringVarP(&editRegex, "regex", "r", "", "replace the pattern with a regular expression")
	editCmd.Flags().StringArrayVarP(&editLiterals, "literal", "l", nil, "replace the pattern with literal strings (repeatable)")
	editCmd.Flags().StringVarP(&editPlacement, "placement", "p", "", "cursor placement: natural, start or end")
	editCmd.MarkFlagsMutuallyExclusive("regex", "literal")

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")

	listCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")

	rootCmd.AddCommand(addCmd, editCmd, deleteCmd, listCmd)
}

// errNoLiterals is shown when the literal prompt ends with nothing entered.
var errNoLiterals = errors.New("at least one literal is required")

// promptPattern reads a regex, or literals one per line when the regex is
// left empty. An empty literal list re-prompts.
func promptPattern(in io.Reader, out io.Writer) (instance.Pattern, error) {
	r := bufio.NewReader(in)

	_, _ = fmt.Fprint(out, "Regex (empty for literals): ")
	expr, err := readLine(r)
	if err != nil {
		return instance.Pattern{}, err
	}
	if expr != "" {
		return instance.Regex(expr), nil
	}

	for {
		var lits []string
		for {
			_, _ = fmt.Fprint(out, "Literal (empty to finish): ")
			line, err := readLine(r)
			if err != nil {
				return instance.Pattern{}, err
			}
			if line == "" {
				break
			}
			lits = append(lits, line)
		}
		if len(lits) > 0 {
			return instance.Literals(lits...), nil
		}
		_, _ = fmt.Fprintln(out, errNoLiterals)
	}
}

// readLine returns the next line without its terminator. io.EOF is returned
// only when nothing was read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a y/N question; anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
