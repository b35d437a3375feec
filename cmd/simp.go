package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skarn-lang/skarn/internal/log"
	"github.com/skarn-lang/skarn/skarn"
	"github.com/skarn-lang/skarn/skerr"
)

var SimpCmd = &cobra.Command{
	Use:          "simp goal.yaml",
	Short:        "Simplify the equality hypotheses of a goal file",
	RunE:         runSimp,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var simpLogLevel *int

func init() {
	simpLogLevel = SimpCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runSimp(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*simpLogLevel))

	loaded, err := loadChecked(args[0])
	if err != nil {
		return err
	}
	report, err := skarn.SimplifyAll(cmd.Context(), loaded.Simplifier(), loaded.Goal)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), skarn.RenderReport(report))
	return err
}

func loadChecked(path string) (*skarn.LoadedGoal, error) {
	loaded, err := skarn.LoadGoalFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load goal file: %w", err)
	}
	if loaded.Errors().HasError() {
		sb := &strings.Builder{}
		for _, problem := range loaded.Errors().Errors() {
			sb.WriteString("\n")
			sb.WriteString(skerr.FormatWithCode(problem))
		}
		return nil, fmt.Errorf("errors found in goal file:%s", sb.String())
	}
	return loaded, nil
}
