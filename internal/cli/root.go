// Package cli provides the command-line interface for revagent.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/revagent/internal/cli/commands"
	"github.com/leapstack-labs/revagent/internal/cli/config"
	"github.com/leapstack-labs/revagent/internal/logging"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var closeLog func() error

	rootCmd := &cobra.Command{
		Use:   "revagent",
		Short: "revagent - Royalties revenue insights agent",
		Long: `revagent answers natural-language questions about music publishing
royalties.

Questions are translated into read-only SQL by a language model, checked
against a keyword blocklist, capped to a row limit and run against the
royalties dataset loaded from CSV. Answers fall back to a deterministic
rendering of the rows whenever the model is unavailable.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help, completion and version commands
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closeFn, err := logging.New(logging.Options{
				Level:   cfg.LogLevel,
				Verbose: cfg.Verbose,
				Console: cmd.ErrOrStderr(),
				Dir:     cfg.LogDir,
			})
			if err != nil {
				return err
			}
			closeLog = closeFn

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}
			logger.Debug("configuration loaded",
				"config_file", config.GetConfigFileUsed(),
				"target", cfg.Target.Type,
				"model", cfg.Model,
				"data_dir", cfg.DataDir,
			)

			cmd.SetContext(config.WithContext(cmd.Context(), cfg, logger))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if closeLog == nil {
				return nil
			}
			return closeLog()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Royalties Text-to-SQL agent built with Go
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./revagent.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the royalties CSV files")
	rootCmd.PersistentFlags().String("model", "", "Chat model used to write SQL and answers")
	rootCmd.PersistentFlags().Int("max-retries", 0, "Retries after a failed SQL generation call")
	rootCmd.PersistentFlags().String("target", "", "Database to load the dataset into (sqlite, duckdb, postgres)")
	rootCmd.PersistentFlags().String("database", "", "Database path or name (:memory: for in-memory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory for the JSON log file (empty disables it)")

	// Register completion for target flag
	_ = rootCmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "duckdb", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(commands.NewAskCommand())
	rootCmd.AddCommand(commands.NewDemoCommand())
	rootCmd.AddCommand(commands.NewSongsCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. Interrupts cancel the command context so a
// question waiting on the model or the database stops promptly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for revagent.

To load completions:

Bash:
  $ source <(revagent completion bash)
  
  # To load completions for each session, execute once:
  # Linux:
  $ revagent completion bash > /etc/bash_completion.d/revagent
  # macOS:
  $ revagent completion bash > $(brew --prefix)/etc/bash_completion.d/revagent

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  
  # To load completions for each session, execute once:
  $ revagent completion zsh > "${fpath[1]}/_revagent"
  
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ revagent completion fish | source
  
  # To load completions for each session, execute once:
  $ revagent completion fish > ~/.config/fish/completions/revagent.fish

PowerShell:
  PS> revagent completion powershell | Out-String | Invoke-Expression
  
  # To load completions for every new session, run:
  PS> revagent completion powershell > revagent.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
