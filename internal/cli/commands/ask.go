package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// maxPipedQuestion bounds how much piped input is read as a question.
const maxPipedQuestion = 64 * 1024

// AskOptions holds options for the ask command.
type AskOptions struct {
	Format  string
	ShowSQL bool
}

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	opts := &AskOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about royalties revenue",
		Long: `Answer a natural-language question about the royalties dataset.

The question is turned into a read-only SQL query by the language model,
checked, run against the dataset and answered in plain English. When the
model cannot phrase the answer, a deterministic answer built from the rows
is printed instead.

With no arguments the question is read from stdin. When stdin is a terminal
an interactive session starts instead.`,
		Example: `  # Ask one question
  revagent ask "What is the total revenue for Alex Park?"

  # Show the SQL that was run
  revagent ask --show-sql "How many songs does each writer have?"

  # Read the question from a pipe
  echo "Which writer has the highest total revenue?" | revagent ask

  # Interactive session
  revagent ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatText, "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&opts.ShowSQL, "show-sql", false, "Print the SQL that was run")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string, opts *AskOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) > 0 {
		return askOne(cmd, cmdCtx, strings.Join(args, " "), opts)
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		return runAskREPL(cmd, cmdCtx, opts)
	}

	data, err := io.ReadAll(io.LimitReader(in, maxPipedQuestion))
	if err != nil {
		return fmt.Errorf("failed to read question from stdin: %w", err)
	}
	return askOne(cmd, cmdCtx, string(data), opts)
}

func askOne(cmd *cobra.Command, cmdCtx *CommandContext, question string, opts *AskOptions) error {
	res := cmdCtx.Agent.AskDetailed(cmd.Context(), question, cmdCtx.Executor)
	return renderResult(cmd.OutOrStdout(), res, opts.Format, opts.ShowSQL)
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
