package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/revagent/internal/agent"
	"github.com/leapstack-labs/revagent/internal/dataset"
)

// RequiredQuestion is the question whose answer the demo saves.
const RequiredQuestion = "What is the total revenue for Alex Park?"

// ResultFileName is written to the output directory by the demo.
const ResultFileName = "alex_park_result.txt"

// BonusQuestions are asked after the required question.
var BonusQuestions = []string{
	"Which writer has the highest total revenue?",
	"What are the top 3 songs by total revenue?",
	"How many songs does each writer have?",
}

// DemoOptions holds options for the demo command.
type DemoOptions struct {
	Transcript string
	NoBonus    bool
}

// Transcript is the YAML document written by demo --transcript.
type Transcript struct {
	GeneratedAt time.Time       `yaml:"generated_at"`
	Model       string          `yaml:"model"`
	Target      string          `yaml:"target"`
	Results     []*agent.Result `yaml:"results"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand() *cobra.Command {
	opts := &DemoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the end-to-end revenue walkthrough",
		Long: `Validate the configuration, load the royalties dataset and answer the
reference question "What is the total revenue for Alex Park?".

The answer is saved to alex_park_result.txt in the output directory. Three
bonus questions are answered afterwards unless --no-bonus is given.`,
		Example: `  # Run the walkthrough
  revagent demo

  # Also save every answer with its SQL
  revagent demo --transcript output/transcript.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Transcript, "transcript", "", "Write all results to this YAML file")
	cmd.Flags().BoolVar(&opts.NoBonus, "no-bonus", false, "Skip the bonus questions")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *DemoOptions) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	_, _ = fmt.Fprintln(out, rule)
	_, _ = fmt.Fprintln(out, "  Revenue Insights Agent")
	_, _ = fmt.Fprintln(out, rule)

	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}
	if problems := cfg.Problems(); len(problems) > 0 {
		lines := make([]string, len(problems))
		for i, p := range problems {
			lines[i] = p.Error()
		}
		_, _ = fmt.Fprintf(out, "\n  FATAL: Startup validation failed:\n    - %s\n", strings.Join(lines, "\n    - "))
		return fmt.Errorf("startup validation failed: %w", errors.Join(problems...))
	}

	_, _ = fmt.Fprintln(out, "\nSetting up database...")
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	_, _ = fmt.Fprintln(out, "  Database ready.")
	renderStats(out, cmdCtx.Stats)

	songs, err := dataset.CurrentSongs(ctx, cmdCtx.Executor, cfg.QueryTimeout)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "\n  Current songs (via view):")
	for _, s := range songs {
		_, _ = fmt.Fprintf(out, "    Song %d: '%s' (writer: %d)\n", s.ID, s.Title, s.WriterID)
	}

	var results []*agent.Result

	_, _ = fmt.Fprintln(out, "\n"+rule)
	res := cmdCtx.Agent.AskDetailed(ctx, RequiredQuestion, cmdCtx.Executor)
	results = append(results, res)
	_, _ = fmt.Fprintf(out, "\n  Answer: %s\n", res.Answer)
	_, _ = fmt.Fprintln(out, rule)

	path, err := writeResultFile(cfg.OutputDir, RequiredQuestion, res.Answer)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("output saved", "path", path)
	_, _ = fmt.Fprintf(out, "\n  Output saved to: %s\n", path)

	if !opts.NoBonus {
		_, _ = fmt.Fprintln(out, "\n"+rule)
		_, _ = fmt.Fprintln(out, "  Bonus Questions")
		_, _ = fmt.Fprintln(out, rule)
		for _, q := range BonusQuestions {
			res := cmdCtx.Agent.AskDetailed(ctx, q, cmdCtx.Executor)
			results = append(results, res)
			_, _ = fmt.Fprintf(out, "\n  Q: %s\n", q)
			_, _ = fmt.Fprintf(out, "  Answer: %s\n", res.Answer)
			_, _ = fmt.Fprintln(out, strings.Repeat("-", len(rule)))
		}
	}

	if opts.Transcript != "" {
		t := &Transcript{
			GeneratedAt: time.Now().UTC(),
			Model:       cfg.Model,
			Target:      cfg.Target.Type,
			Results:     results,
		}
		if err := writeTranscript(opts.Transcript, t); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "\n  Transcript saved to: %s\n", opts.Transcript)
	}

	cmdCtx.Logger.Info("agent finished successfully")
	return nil
}

// writeResultFile saves the question and answer as two lines.
func writeResultFile(dir, question, answer string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, ResultFileName)
	content := fmt.Sprintf("Question: %s\nAnswer: %s\n", question, answer)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func writeTranscript(path string, t *Transcript) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from a flag
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return encodeYAML(f, t)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
