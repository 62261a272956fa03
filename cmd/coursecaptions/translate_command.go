package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"coursecaptions/internal/config"
	"coursecaptions/internal/ledger"
	"coursecaptions/internal/workflow"
)

type translateFlags struct {
	target      string
	provider    string
	concurrency int
	force       bool
	failFast    bool
	json        bool
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var flags translateFlags

	cmd := &cobra.Command{
		Use:   "translate <course>",
		Short: "Download and translate every lecture caption of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("concurrency") {
				if err := config.ValidateConcurrency("--concurrency", flags.concurrency); err != nil {
					return err
				}
			}
			cfg, err := configWithProvider(ctx, flags.provider)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withLedger(func(store *ledger.Store) error {
				runner := workflow.NewRunner(cfg, store, workflow.WithLogger(logger))
				summary, runErr := runner.Run(cmd.Context(), strings.TrimSpace(args[0]), workflow.RunOptions{
					TargetLanguage: flags.target,
					Force:          flags.force,
					FailFast:       flags.failFast,
					Concurrency:    flags.concurrency,
				})
				if summary != nil {
					if flags.json {
						if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
							return err
						}
					} else {
						printSummary(cmd.OutOrStdout(), summary)
					}
				}
				if runErr != nil {
					return runErr
				}
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d lectures failed", summary.Failed, summary.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "Target language (defaults to translation.target_language)")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "Translation provider override (google, llm)")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Lectures translated at the same time")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Retranslate lectures that already have output")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Stop at the first failed lecture")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the run summary as JSON")
	return cmd
}

// configWithProvider returns the loaded config, copied with the provider
// override applied when one is given.
func configWithProvider(ctx *commandContext, provider string) (*config.Config, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return cfg, nil
	}
	override := *cfg
	override.Translation.Provider = provider
	if err := override.Validate(); err != nil {
		return nil, err
	}
	return &override, nil
}

func printSummary(out io.Writer, summary *workflow.Summary) {
	fmt.Fprintf(out, "Course %s (%s), run %s\n", summary.Course, summary.TargetLanguage, summary.RunID)
	fmt.Fprintf(out, "Translated %d, skipped %d, failed %d of %d lectures in %s\n",
		summary.Translated, summary.Skipped, summary.Failed, summary.Total,
		summary.Duration.Round(time.Millisecond))
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "  %s [%s]: %v\n", failure.Member, failure.Kind, failure.Err)
	}
}

type failureView struct {
	Member string `json:"member"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

type summaryView struct {
	RunID          string        `json:"run_id"`
	Course         string        `json:"course"`
	TargetLanguage string        `json:"target_language"`
	Total          int           `json:"total"`
	Translated     int           `json:"translated"`
	Skipped        int           `json:"skipped"`
	Failed         int           `json:"failed"`
	DurationMillis int64         `json:"duration_ms"`
	Failures       []failureView `json:"failures,omitempty"`
}

func newSummaryView(summary *workflow.Summary) summaryView {
	view := summaryView{
		RunID:          summary.RunID,
		Course:         summary.Course,
		TargetLanguage: summary.TargetLanguage,
		Total:          summary.Total,
		Translated:     summary.Translated,
		Skipped:        summary.Skipped,
		Failed:         summary.Failed,
		DurationMillis: summary.Duration.Milliseconds(),
	}
	for _, failure := range summary.Failures {
		view.Failures = append(view.Failures, failureView{
			Member: failure.Member,
			Kind:   failure.Kind,
			Error:  failure.Err.Error(),
		})
	}
	return view
}
