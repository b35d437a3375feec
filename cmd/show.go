package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/skarn-lang/skarn/internal/log"
	"github.com/skarn-lang/skarn/skarn"
)

var ShowCmd = &cobra.Command{
	Use:          "show goal.yaml",
	Short:        "Print the goal a file describes, without simplifying it",
	RunE:         runShow,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var showLogLevel *int

func init() {
	showLogLevel = ShowCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runShow(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*showLogLevel))

	loaded, err := loadChecked(args[0])
	if err != nil {
		return err
	}
	if loaded.Case != "" {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "case %s\n", loaded.Case); err != nil {
			return err
		}
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), skarn.RenderGoal(loaded.Goal))
	return err
}
