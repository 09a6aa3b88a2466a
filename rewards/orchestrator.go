// Package rewards decides whether a coin grant should be issued for a
// qualifying event, at most once per freshly achieved condition.
package rewards

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/focusflow/focusflow-go"
)

// EvalContext carries the state the triggering transition produced.
// Evaluation is scoped to that transition, never to polled ambient state.
type EvalContext struct {
	Tasks          []focusflow.TaskRecord
	RewardEligible bool
	SessionID      focusflow.SessionID
	Cycle          int
}

type cycleKey struct {
	sessionID focusflow.SessionID
	cycle     int
}

type Orchestrator struct {
	mu  sync.Mutex
	svc focusflow.RewardService
	l   log.Logger

	coinsPerTaskClear int
	coinsPerCycle     int

	// lastAllComplete edge-triggers the all-tasks grant: it must be
	// freshly re-achieved before another grant can be issued.
	lastAllComplete bool
	grantedCycles   map[cycleKey]bool
}

func NewOrchestrator(svc focusflow.RewardService, coinsPerTaskClear, coinsPerCycle int, logger log.Logger) *Orchestrator {
	return &Orchestrator{
		svc:               svc,
		l:                 logger,
		coinsPerTaskClear: coinsPerTaskClear,
		coinsPerCycle:     coinsPerCycle,
		grantedCycles:     make(map[cycleKey]bool),
	}
}

// Evaluate decides whether trigger qualifies for a grant and, if so, issues
// it. A grant failure returns the event with Granted=false alongside the
// error; the triggering action is never rolled back.
func (o *Orchestrator) Evaluate(ctx context.Context, trigger focusflow.RewardTrigger, ec EvalContext) (focusflow.RewardEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch trigger {
	case focusflow.AllTasksCompletedToday:
		allComplete := len(ec.Tasks) > 0
		for _, task := range ec.Tasks {
			if !task.Completed {
				allComplete = false
				break
			}
		}
		return o.evaluateAllComplete(ctx, allComplete, ec.RewardEligible)

	case focusflow.CycleCompleted:
		event := focusflow.RewardEvent{
			Trigger:  focusflow.CycleCompleted,
			Eligible: ec.RewardEligible,
		}
		if !event.Eligible {
			return event, nil
		}
		key := cycleKey{sessionID: ec.SessionID, cycle: ec.Cycle}
		if o.grantedCycles[key] {
			return event, nil
		}
		balance, err := o.svc.GrantCoins(ctx, o.coinsPerCycle, trigger.String())
		if err != nil {
			// not marked granted; the same boundary may retry
			return event, fmt.Errorf("grant cycle reward: %w", err)
		}
		o.grantedCycles[key] = true
		event.Granted = true
		event.Coins = o.coinsPerCycle
		o.l.Info("cycle reward granted", "sessionID", ec.SessionID, "cycle", ec.Cycle, "balance", balance.NewBalance)
		return event, nil

	default:
		return focusflow.RewardEvent{}, fmt.Errorf("unknown reward trigger: %d", trigger)
	}
}

// HandleTaskToggle consumes the task collaborator's response. The trigger
// fires only on the transition where allTasksCompletedToday becomes true,
// not on every fetch or re-render.
func (o *Orchestrator) HandleTaskToggle(ctx context.Context, result focusflow.TaskToggleResult, eligible bool) (focusflow.RewardEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.evaluateAllComplete(ctx, result.AllTasksCompletedToday, eligible)
}

func (o *Orchestrator) evaluateAllComplete(ctx context.Context, allComplete, eligible bool) (focusflow.RewardEvent, error) {
	fresh := allComplete && !o.lastAllComplete
	o.lastAllComplete = allComplete

	event := focusflow.RewardEvent{
		Trigger:  focusflow.AllTasksCompletedToday,
		Eligible: allComplete && eligible,
	}
	if !event.Eligible || !fresh {
		return event, nil
	}

	balance, err := o.svc.GrantCoins(ctx, o.coinsPerTaskClear, event.Trigger.String())
	if err != nil {
		// treated as not granted; a grant waits for the condition to be
		// freshly re-achieved
		return event, fmt.Errorf("grant task reward: %w", err)
	}
	event.Granted = true
	event.Coins = o.coinsPerTaskClear
	o.l.Info("task reward granted", "balance", balance.NewBalance)
	return event, nil
}
