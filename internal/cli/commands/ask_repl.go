package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/revagent/internal/dataset"
)

const (
	replPrompt  = "revagent> "
	historyFile = ".revagent_history"
)

// lineReader is the part of readline the REPL loop uses.
type lineReader interface {
	Readline() (string, error)
}

// replSession holds REPL state between questions.
type replSession struct {
	cc      *CommandContext
	opts    *AskOptions
	out     io.Writer
	errOut  io.Writer
	lastSQL string
}

func runAskREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *AskOptions) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filepath.Join(cmdCtx.Cfg.ProjectRoot, historyFile),
		AutoComplete:    newDotCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Revenue Insights Agent (target: %s, model: %s)\n", cmdCtx.Cfg.Target.Type, cmdCtx.Cfg.Model)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Ask a question, or type .help for commands and .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	s := &replSession{cc: cmdCtx, opts: opts, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	return s.run(cmd.Context(), rl)
}

// run reads questions until EOF or .quit.
func (s *replSession) run(ctx context.Context, rl lineReader) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := s.handleDotCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		res := s.cc.Agent.AskDetailed(ctx, line, s.cc.Executor)
		s.lastSQL = res.SQL
		if err := renderResult(s.out, res, s.opts.Format, s.opts.ShowSQL); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(s.out)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handleDotCommand runs a REPL command and reports whether to exit.
func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".sql":
		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "on":
				s.opts.ShowSQL = true
			case "off":
				s.opts.ShowSQL = false
			default:
				_, _ = fmt.Fprintln(s.errOut, "Usage: .sql [on|off]")
				return false
			}
			_, _ = fmt.Fprintf(s.out, "Show SQL: %s\n", onOff(s.opts.ShowSQL))
			return false
		}
		if s.lastSQL == "" {
			_, _ = fmt.Fprintln(s.out, "No SQL has been run yet.")
			return false
		}
		_, _ = fmt.Fprintln(s.out, s.lastSQL)

	case ".songs":
		songs, err := dataset.CurrentSongs(ctx, s.cc.Executor, s.cc.Cfg.QueryTimeout)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		renderSongs(s.out, songs)

	case ".rows":
		if s.lastSQL == "" {
			_, _ = fmt.Fprintln(s.out, "No SQL has been run yet.")
			return false
		}
		rs, err := s.cc.Executor.Run(ctx, s.lastSQL, s.cc.Cfg.QueryTimeout)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		renderResultSet(s.out, rs)

	case ".stats":
		renderStats(s.out, s.cc.Stats)

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .sql            Show the SQL behind the last answer
  .sql on|off     Print the SQL with every answer
  .rows           Show the rows behind the last answer
  .songs          List current songs
  .stats          Show how many rows were loaded
  .quit / .exit   Exit the REPL

Anything else is sent to the agent as a question.
`
	_, _ = fmt.Fprintln(w, help)
}

// newDotCompleter completes REPL commands.
func newDotCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".sql", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(".rows"),
		readline.PcItem(".songs"),
		readline.PcItem(".stats"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
