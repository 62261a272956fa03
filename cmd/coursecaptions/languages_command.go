package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursecaptions/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List language codes with built-in names",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := language.Known()
			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				rows = append(rows, []string{code, language.DisplayName(code)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Code", "Language"}, rows))
			fmt.Fprintln(cmd.OutOrStdout(), "Other BCP 47 tags (pt-BR, zh-Hant) are accepted as given.")
			return nil
		},
	}
}
