package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"titlemark/internal/markers"
)

func newMarkersCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "markers",
		Short:       "List the version markers and their canonical spelling",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := markers.Specs()
			rows := make([][]string, 0, len(specs))
			for _, spec := range specs {
				rows = append(rows, []string{spec.Kind.String(), spec.Canonical})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{
				{header: "Kind"},
				{header: "Canonical"},
			}, rows))
			return nil
		},
	}
}
