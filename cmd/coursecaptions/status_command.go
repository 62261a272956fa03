package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"coursecaptions/internal/ledger"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var target string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [course]",
		Short: "Show translated courses, or the lectures and runs of one course",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				if len(args) == 0 {
					return showCourses(cmd, store, asJSON)
				}
				return showCourse(cmd, store, strings.TrimSpace(args[0]), target, limit, asJSON)
			})
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Only show lectures for this target language")
	cmd.Flags().IntVar(&limit, "runs", 5, "Number of recent runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}

func showCourses(cmd *cobra.Command, store *ledger.Store, asJSON bool) error {
	summaries, err := store.CourseSummaries(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd, summaries)
	}
	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No courses translated yet")
		return nil
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Course,
			s.TargetLanguage,
			strconv.Itoa(s.Translated),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Failed),
			formatAge(s.LastUpdated),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Course", "Language", "Translated", "Skipped", "Failed", "Updated"},
		rows, 3, 4, 5,
	))
	return nil
}

type courseStatus struct {
	Lectures []*ledger.Lecture `json:"lectures"`
	Runs     []*ledger.Run     `json:"runs"`
}

func showCourse(cmd *cobra.Command, store *ledger.Store, course, target string, limit int, asJSON bool) error {
	lectures, err := store.ListLectures(cmd.Context(), course, target)
	if err != nil {
		return err
	}
	runs, err := store.ListRuns(cmd.Context(), course, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd, courseStatus{Lectures: lectures, Runs: runs})
	}

	out := cmd.OutOrStdout()
	if len(lectures) == 0 && len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded for %s\n", course)
		return nil
	}

	lectureRows := make([][]string, 0, len(lectures))
	for _, l := range lectures {
		detail := l.OutputPath
		if l.Status == ledger.LectureFailed {
			detail = fmt.Sprintf("%s: %s", l.ErrorKind, l.ErrorMessage)
		}
		lectureRows = append(lectureRows, []string{
			l.Member,
			l.TargetLanguage,
			string(l.Status),
			strconv.Itoa(l.CueCount),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Lecture", "Language", "Status", "Cues", "Output / Error"}, lectureRows, 4))

	runRows := make([][]string, 0, len(runs))
	for _, r := range runs {
		runRows = append(runRows, []string{
			shortID(r.ID),
			r.TargetLanguage,
			r.Provider,
			string(r.Status),
			fmt.Sprintf("%d/%d/%d", r.Translated, r.Skipped, r.Failed),
			formatAge(r.StartedAt),
			formatElapsed(r.Duration()),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Run", "Language", "Provider", "Status", "Ok/Skip/Fail", "Started", "Took"}, runRows))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
