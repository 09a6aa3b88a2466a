package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/focusflow/focusflow-go"
)

// placeholderGoals is the intentional degraded mode when the remote goal
// list is unavailable; it is not an error.
var placeholderGoals = []focusflow.SessionInfo{
	{GoalLabel: "Deep work", ColorTag: "tomato"},
	{GoalLabel: "Reading", ColorTag: "ocean"},
	{GoalLabel: "Exercise", ColorTag: "forest"},
}

func newGoalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "list focus goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			goals, err := a.client.ListSessions(ctx)
			if err != nil {
				log.Warn("goal list unavailable, using placeholders", "err", err)
				goals = placeholderGoals
			}

			labelStyle := lipgloss.NewStyle().Bold(true)
			tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
			for _, g := range goals {
				line := labelStyle.Render(g.GoalLabel)
				if g.ColorTag != "" {
					line += " " + tagStyle.Render("["+g.ColorTag+"]")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
