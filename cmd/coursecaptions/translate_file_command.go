package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursecaptions/internal/config"
	"coursecaptions/internal/workflow"
)

func newTranslateFileCommand(ctx *commandContext) *cobra.Command {
	var output string
	var target string
	var provider string

	cmd := &cobra.Command{
		Use:   "translate-file <file.vtt|file.srt>",
		Short: "Translate a single local caption file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configWithProvider(ctx, provider)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if output != "" {
				if output, err = config.ExpandPath(output); err != nil {
					return err
				}
			}

			runner := workflow.NewRunner(cfg, nil, workflow.WithLogger(logger))
			result, err := runner.TranslateFile(cmd.Context(), input, output, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues (%s) to %s\n", result.Cues, result.TargetLanguage, result.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output SRT path (default <input>.<lang>.srt)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language (defaults to translation.target_language)")
	cmd.Flags().StringVar(&provider, "provider", "", "Translation provider override (google, llm)")
	return cmd
}
