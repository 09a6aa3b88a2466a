package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/focusflow/focusflow-go"
	"github.com/focusflow/focusflow-go/engine"
	"github.com/focusflow/focusflow-go/rewards"
)

func newStartCmd(a *app) *cobra.Command {
	var goalLabel, colorTag, description string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "start a focus session",
		RunE: func(cmd *cobra.Command, args []string) error {
			topCtx := cmd.Context()
			if topCtx == nil {
				topCtx = context.Background()
			}

			eng := engine.New(topCtx, a.client, engine.Settings{
				FocusDuration: a.cfg.FocusDuration,
				BreakDuration: a.cfg.BreakDuration,
			}, *log.Default())

			if err := eng.Create(topCtx, goalLabel, colorTag, description); err != nil {
				return err
			}

			p := tea.NewProgram(newTimerModel(topCtx, eng, a.cfg))
			eng.OnChange(func(before, curr focusflow.Session) {
				p.Send(sessionMsg{sess: curr})
			})
			eng.OnAsyncError(func(err error) {
				p.Send(errMsg{err: err})
			})
			eng.OnCycleComplete(func(record focusflow.CycleRecord, result focusflow.CompletionResult) {
				if err := a.tx.WithinTransaction(topCtx, func(ctx context.Context) error {
					_, err := a.journal.InsertCycle(ctx, record)
					return err
				}); err != nil {
					log.Error("failed to journal cycle", "sessionID", record.SessionID, "cycle", record.Cycle, "err", err)
				}

				event, err := a.orch.Evaluate(topCtx, focusflow.CycleCompleted, rewards.EvalContext{
					RewardEligible: a.cfg.RewardEligible,
					SessionID:      record.SessionID,
					Cycle:          record.Cycle,
				})
				if err != nil {
					log.Error("cycle reward evaluation failed", "sessionID", record.SessionID, "err", err)
				}
				p.Send(rewardMsg{event: event})
			})
			eng.OnFinished(func(summary focusflow.CycleRecord) {
				if err := a.tx.WithinTransaction(topCtx, func(ctx context.Context) error {
					_, err := a.journal.InsertCycle(ctx, summary)
					return err
				}); err != nil {
					log.Error("failed to journal session summary", "sessionID", summary.SessionID, "err", err)
				}
			})

			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&goalLabel, "goal", "g", "Deep work", "what you are focusing on")
	cmd.Flags().StringVarP(&colorTag, "color", "c", "tomato", "color tag for the goal")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "session description")
	return cmd
}
