package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "show local focus history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			since := time.Now().AddDate(0, 0, -days)

			records, err := a.journal.ListCyclesSince(ctx, since)
			if err != nil {
				return err
			}
			total, err := a.journal.TotalFocusSeconds(ctx, since)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range records {
				state := fmt.Sprintf("cycle %d", r.Cycle)
				if r.Abandoned {
					state = "abandoned"
				}
				fmt.Fprintf(out, "%s  %-24s %-10s %dm focus\n",
					r.CompletedAt.Format("2006-01-02 15:04"), r.GoalLabel, state, r.FocusSeconds/60)
			}
			fmt.Fprintf(out, "\ntotal focus time: %s\n", time.Duration(total)*time.Second)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 7, "how many days back to show")
	return cmd
}
