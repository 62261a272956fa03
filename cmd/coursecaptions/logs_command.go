package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"coursecaptions/internal/logging"
	"coursecaptions/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		course string
		runID  string
		level  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the coursecaptions log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			match := logs.MatchFields(map[string]string{
				logging.FieldCourse: course,
				logging.FieldRunID:  runID,
				"level":             level,
			})

			out := cmd.OutOrStdout()
			result, err := logs.Tail(path, lines, match)
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, 500*time.Millisecond, match, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().StringVar(&course, "course", "", "Only show entries for this course")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for this run id")
	cmd.Flags().StringVar(&level, "level", "", "Only show entries at this level (debug, info, warn, error)")
	return cmd
}
