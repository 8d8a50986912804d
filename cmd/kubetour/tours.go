package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kode4food/kubetour/internal/catalog"
)

func toursCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tours",
		Aliases: []string{"ls"},
		Short:   "List the available tours",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tours := catalog.Default().Tours()
			rows := make([][]string, len(tours))
			for i, t := range tours {
				start := "0"
				if t.Unstarted {
					start = "unstarted"
				}
				rows[i] = []string{
					string(t.ID),
					t.Title,
					strconv.Itoa(len(t.Steps)),
					strconv.FormatInt(t.DelayMs, 10) + "ms",
					start,
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Steps", "Delay", "Start"}, rows,
			))
			return err
		},
	}
}
