package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/revagent/internal/adapter"
	"github.com/leapstack-labs/revagent/internal/cli/config"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Connect bool
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration before asking questions",
		Long: `Report the effective configuration and every problem that would stop the
agent from answering: a missing API key, missing data files, an unknown
target or out-of-range limits.

With --connect the dataset is also loaded into the target to prove the
database is reachable.`,
		Example: `  # Check configuration
  revagent doctor

  # Also load the dataset
  revagent doctor --connect --target duckdb`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Connect, "connect", false, "Load the dataset into the target")

	return cmd
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	out := cmd.OutOrStdout()
	cfg, err := getConfig(cmd.Context())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Configuration")
	renderDoctorConfig(out, cfg)

	_, _ = fmt.Fprintln(out, "\nChecks")
	problems := cfg.Problems()
	for _, p := range problems {
		_, _ = fmt.Fprintf(out, "  ✗ %s\n", indentContinuation(p.Error()))
	}

	if opts.Connect && cfg.ValidateData() == nil && cfg.Target.Validate() == nil {
		cmdCtx, cleanup, err := NewCommandContext(cmd)
		if err != nil {
			problems = append(problems, err)
			_, _ = fmt.Fprintf(out, "  ✗ %s\n", indentContinuation(err.Error()))
		} else {
			_, _ = fmt.Fprintf(out, "  ✓ connected to %s\n", cmdCtx.Adapter.DialectName())
			renderStats(out, cmdCtx.Stats)
			cleanup()
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("doctor found %d problem(s)", len(problems))
	}
	_, _ = fmt.Fprintln(out, "  ✓ ready to answer questions")
	return nil
}

func renderDoctorConfig(w io.Writer, cfg *config.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false

	apiKey := "not set"
	if cfg.APIKey != "" {
		apiKey = "set"
	}
	target := cfg.Target.Type
	if cfg.Target.Database != "" {
		target = fmt.Sprintf("%s (%s)", cfg.Target.Type, cfg.Target.Database)
	}

	t.AppendRows([]table.Row{
		{"Config file", orNone(config.GetConfigFileUsed())},
		{".env file", orNone(config.GetDotEnvUsed())},
		{"Project root", cfg.ProjectRoot},
		{"Data dir", cfg.DataDir},
		{"Output dir", cfg.OutputDir},
		{"Log dir", orNone(cfg.LogDir)},
		{"Model", cfg.Model},
		{"API key", apiKey},
		{"Target", target},
		{"Adapters", strings.Join(adapter.ListAdapters(), ", ")},
		{"Retries", fmt.Sprintf("%d (initial backoff %s)", cfg.MaxRetries, cfg.InitialBackoff)},
		{"Row cap", cfg.MaxResultRows},
	})
	t.Render()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// indentContinuation aligns multi-line messages under the check mark.
func indentContinuation(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}
