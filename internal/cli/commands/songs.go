package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/revagent/internal/dataset"
)

// NewSongsCommand creates the songs command.
func NewSongsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "songs",
		Short: "List current songs",
		Long: `Load the dataset and list the current_songs view: one row per song with
its latest title. Useful to check the deduplication the agent relies on.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			songs, err := dataset.CurrentSongs(cmd.Context(), cmdCtx.Executor, cmdCtx.Cfg.QueryTimeout)
			if err != nil {
				return err
			}
			renderSongs(cmd.OutOrStdout(), songs)
			return nil
		},
	}
}
