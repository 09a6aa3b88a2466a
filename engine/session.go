package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/focusflow/focusflow-go"
)

type Settings struct {
	FocusDuration time.Duration
	BreakDuration time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		FocusDuration: focusflow.DefaultFocusDuration,
		BreakDuration: focusflow.DefaultBreakDuration,
	}
}

type ChangeHandler func(before, curr focusflow.Session)

// Engine owns the in-memory Session for one timer screen. Commands apply an
// optimistic local transition, then reconcile against the remote session
// service; rollback rules differ per operation. Exactly one Engine exists
// per active timer screen.
type Engine struct {
	mu       sync.Mutex
	svc      focusflow.SessionService
	settings Settings
	clock    *Clock
	l        log.Logger

	parentCtx context.Context

	sess    focusflow.Session
	created bool
	// epoch advances whenever the local session is superseded (stop,
	// reset, restore); in-flight reconciliations from an older epoch are
	// discarded as stale.
	epoch uint64
	// pending is set while a command's remote call is in flight. New
	// commands are rejected rather than queued, except Stop and Reset.
	pending bool

	onChange        ChangeHandler
	onCycleComplete func(focusflow.CycleRecord, focusflow.CompletionResult)
	onFinished      func(focusflow.CycleRecord)
	onAsyncError    func(error)
}

type Option func(*Engine)

func WithClockOptions(opts ...ClockOption) Option {
	return func(e *Engine) {
		e.clock = NewClock(e.handleTick, e.handleExpired, opts...)
	}
}

func New(ctx context.Context, svc focusflow.SessionService, settings Settings, logger log.Logger, opts ...Option) *Engine {
	e := &Engine{
		svc:       svc,
		settings:  settings,
		l:         logger,
		parentCtx: ctx,
	}
	e.clock = NewClock(e.handleTick, e.handleExpired)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers a handler fired after every local state change. The
// handler runs outside the engine lock.
func (e *Engine) OnChange(h ChangeHandler) {
	e.onChange = h
}

// OnCycleComplete fires once per cycle acknowledged by the remote service.
func (e *Engine) OnCycleComplete(h func(focusflow.CycleRecord, focusflow.CompletionResult)) {
	e.onCycleComplete = h
}

// OnFinished fires when the session reaches its terminal state via Stop or
// a confirmed Reset; the record's Abandoned flag distinguishes the two.
func (e *Engine) OnFinished(h func(focusflow.CycleRecord)) {
	e.onFinished = h
}

// OnAsyncError receives failures from transitions the user did not invoke
// directly, such as the cycle-boundary completion call.
func (e *Engine) OnAsyncError(h func(error)) {
	e.onAsyncError = h
}

func (e *Engine) focusSeconds() int {
	return int(e.settings.FocusDuration / time.Second)
}

func (e *Engine) breakSeconds() int {
	return int(e.settings.BreakDuration / time.Second)
}

// Snapshot returns a value copy of the session for navigation hand-off.
func (e *Engine) Snapshot() focusflow.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Restore reconstructs local state from a snapshot carried across
// navigation, without re-fetching. The clock is not restarted; a snapshot
// taken while Running comes back Paused and the user resumes explicitly.
func (e *Engine) Restore(s focusflow.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Stop()
	if s.Status == focusflow.SessionRunning {
		s.Status = focusflow.SessionPaused
	}
	e.sess = s
	e.created = s.ID != ""
	e.epoch++
	e.pending = false
}

// Suspend stops the countdown without touching local status or the remote
// record. Used when the timer screen goes away; the session stays
// Running/Paused server-side until the user pauses or stops.
func (e *Engine) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Stop()
}

func (e *Engine) fireChange(before, curr focusflow.Session) {
	if e.onChange != nil {
		e.onChange(before, curr)
	}
}

// Create requests remote session creation. No local-only session is
// permitted: on failure there is nothing to roll back and the caller must
// retry or abort.
func (e *Engine) Create(ctx context.Context, goalLabel, colorTag, description string) error {
	e.mu.Lock()
	if e.created && e.sess.Status != focusflow.SessionFinished {
		e.mu.Unlock()
		return fmt.Errorf("%w: session %s still active", focusflow.ErrInvalidTransition, e.sess.ID)
	}
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}
	e.pending = true
	ep := e.epoch
	e.mu.Unlock()

	info, err := e.svc.CreateSession(ctx, focusflow.CreateSessionRequest{
		GoalLabel:   goalLabel,
		ColorTag:    colorTag,
		Description: description,
	})

	e.mu.Lock()
	e.pending = false
	if e.epoch != ep {
		e.mu.Unlock()
		return focusflow.ErrStaleSession
	}
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("create session: %w", err)
	}

	before := e.sess
	e.sess = focusflow.Session{
		ID:               info.ID,
		GoalLabel:        info.GoalLabel,
		ColorTag:         info.ColorTag,
		Phase:            focusflow.FocusPhase,
		Status:           focusflow.SessionIdle,
		RemainingSeconds: e.focusSeconds(),
	}
	e.created = true
	curr := e.sess
	e.mu.Unlock()

	e.l.Info("session created", "sessionID", curr.ID, "goal", curr.GoalLabel)
	e.fireChange(before, curr)
	return nil
}

// StartOrResume is valid from Idle or Paused. The transition is optimistic:
// on remote failure the prior status is restored and the clock stopped, so
// the clock never runs against a session the server believes is paused.
func (e *Engine) StartOrResume(ctx context.Context) error {
	e.mu.Lock()
	if !e.created {
		e.mu.Unlock()
		return fmt.Errorf("%w: start without session", focusflow.ErrInvalidTransition)
	}
	if e.sess.Status != focusflow.SessionIdle && e.sess.Status != focusflow.SessionPaused {
		e.mu.Unlock()
		return fmt.Errorf("%w: start from %s", focusflow.ErrInvalidTransition, e.sess.Status)
	}
	if e.sess.RemainingSeconds == 0 {
		// focus just expired; the surrounding flow must BeginBreak, or
		// the break boundary is waiting on RetryCycleCompletion
		e.mu.Unlock()
		return fmt.Errorf("%w: phase expired, cannot resume", focusflow.ErrInvalidTransition)
	}
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}

	before := e.sess
	e.sess.Status = focusflow.SessionRunning
	e.clock.Start(e.sess.RemainingSeconds)
	e.pending = true
	ep := e.epoch
	curr := e.sess
	e.mu.Unlock()
	e.fireChange(before, curr)

	_, err := e.svc.SetSessionStatus(ctx, curr.ID, focusflow.StartAction)

	e.mu.Lock()
	e.pending = false
	if e.epoch != ep {
		e.mu.Unlock()
		return focusflow.ErrStaleSession
	}
	if err != nil {
		rolledBack := e.sess
		e.sess.Status = before.Status
		e.clock.Stop()
		curr = e.sess
		e.mu.Unlock()
		e.fireChange(rolledBack, curr)
		return fmt.Errorf("start session %s: %w", curr.ID, err)
	}
	e.mu.Unlock()
	return nil
}

// Pause is valid from Running and is an idempotent no-op from Paused. The
// local pause is kept even when the remote update fails (fail-open): a
// clock left running after a user-initiated pause is the worse failure.
func (e *Engine) Pause(ctx context.Context) error {
	e.mu.Lock()
	if !e.created {
		e.mu.Unlock()
		return fmt.Errorf("%w: pause without session", focusflow.ErrInvalidTransition)
	}
	if e.sess.Status == focusflow.SessionPaused {
		e.mu.Unlock()
		return nil
	}
	if e.sess.Status != focusflow.SessionRunning {
		e.mu.Unlock()
		return fmt.Errorf("%w: pause from %s", focusflow.ErrInvalidTransition, e.sess.Status)
	}
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}

	before := e.sess
	e.sess.Status = focusflow.SessionPaused
	e.clock.Stop()
	e.pending = true
	ep := e.epoch
	curr := e.sess
	e.mu.Unlock()
	e.fireChange(before, curr)

	_, err := e.svc.SetSessionStatus(ctx, curr.ID, focusflow.PauseAction)

	e.mu.Lock()
	e.pending = false
	stale := e.epoch != ep
	e.mu.Unlock()
	if stale {
		return focusflow.ErrStaleSession
	}
	if err != nil {
		e.l.Warn("remote pause failed, keeping local pause", "sessionID", curr.ID, "remaining", curr.RemainingSeconds, "err", err)
		return fmt.Errorf("pause session %s: %w", curr.ID, err)
	}
	return nil
}

// BeginBreak is valid only when the Focus phase just expired. It is a local
// transition; the server learns the break outcome at the cycle boundary.
func (e *Engine) BeginBreak() error {
	e.mu.Lock()
	if !e.created {
		e.mu.Unlock()
		return fmt.Errorf("%w: begin break without session", focusflow.ErrInvalidTransition)
	}
	ok := e.sess.Phase == focusflow.FocusPhase &&
		e.sess.Status == focusflow.SessionPaused &&
		e.sess.RemainingSeconds == 0
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: begin break from %s(%s)", focusflow.ErrInvalidTransition, e.sess.Status, e.sess.Phase)
	}
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}

	before := e.sess
	e.sess.Phase = focusflow.BreakPhase
	e.sess.RemainingSeconds = e.breakSeconds()
	e.sess.Status = focusflow.SessionRunning
	e.clock.Start(e.sess.RemainingSeconds)
	curr := e.sess
	e.mu.Unlock()
	e.fireChange(before, curr)
	return nil
}

// ContinueNextCycle is valid from CycleComplete. The same session continues
// with the same sessionId; the remote "start" update rolls back on failure
// like StartOrResume.
func (e *Engine) ContinueNextCycle(ctx context.Context) error {
	e.mu.Lock()
	if !e.created {
		e.mu.Unlock()
		return fmt.Errorf("%w: continue without session", focusflow.ErrInvalidTransition)
	}
	if e.sess.Status != focusflow.SessionCycleComplete {
		e.mu.Unlock()
		return fmt.Errorf("%w: continue from %s", focusflow.ErrInvalidTransition, e.sess.Status)
	}
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}

	before := e.sess
	e.sess.Phase = focusflow.FocusPhase
	e.sess.RemainingSeconds = e.focusSeconds()
	e.sess.Status = focusflow.SessionRunning
	e.clock.Start(e.sess.RemainingSeconds)
	e.pending = true
	ep := e.epoch
	curr := e.sess
	e.mu.Unlock()
	e.fireChange(before, curr)

	_, err := e.svc.SetSessionStatus(ctx, curr.ID, focusflow.StartAction)

	e.mu.Lock()
	e.pending = false
	if e.epoch != ep {
		e.mu.Unlock()
		return focusflow.ErrStaleSession
	}
	if err != nil {
		rolledBack := e.sess
		e.sess = before
		e.clock.Stop()
		curr = e.sess
		e.mu.Unlock()
		e.fireChange(rolledBack, curr)
		return fmt.Errorf("continue session %s: %w", curr.ID, err)
	}
	e.mu.Unlock()
	return nil
}

// Stop is valid from any non-Finished state and is always honored locally,
// regardless of the remote outcome: the user is leaving the timer screen.
// Stop is allowed through the pending-command guard; a reconciliation still
// in flight lands stale.
func (e *Engine) Stop(ctx context.Context) error {
	return e.finish(ctx, false)
}

// Reset is the two-step destructive variant of Stop: without confirm it
// refuses, with confirm it stops and discards the session object.
func (e *Engine) Reset(ctx context.Context, confirm bool) error {
	if !confirm {
		return focusflow.ErrNotConfirmed
	}
	return e.finish(ctx, true)
}

func (e *Engine) finish(ctx context.Context, discard bool) error {
	e.mu.Lock()
	if !e.created {
		e.mu.Unlock()
		return fmt.Errorf("%w: stop without session", focusflow.ErrInvalidTransition)
	}
	if e.sess.Status == focusflow.SessionFinished {
		e.mu.Unlock()
		return fmt.Errorf("%w: stop from %s", focusflow.ErrInvalidTransition, e.sess.Status)
	}

	before := e.sess
	e.sess.Status = focusflow.SessionFinished
	e.clock.Stop()
	e.epoch++
	e.pending = false
	curr := e.sess
	actual := e.actualFocusSecondsLocked()
	summary := focusflow.CycleRecord{
		SessionID:    curr.ID,
		GoalLabel:    curr.GoalLabel,
		Cycle:        curr.CycleCount,
		FocusSeconds: actual,
		Abandoned:    discard,
		CompletedAt:  time.Now(),
	}
	if discard {
		e.sess = focusflow.Session{}
		e.created = false
		curr = e.sess
	}
	e.mu.Unlock()
	e.fireChange(before, curr)
	if e.onFinished != nil {
		e.onFinished(summary)
	}

	_, err := e.svc.CompleteSession(ctx, before.ID, actual)
	if err != nil {
		e.l.Warn("remote completion failed after local stop", "sessionID", before.ID, "err", err)
		return fmt.Errorf("complete session %s: %w", before.ID, err)
	}
	return nil
}

// actualFocusSecondsLocked totals focus time across completed cycles plus
// the elapsed part of a current focus phase.
func (e *Engine) actualFocusSecondsLocked() int {
	total := e.sess.CycleCount * e.focusSeconds()
	switch e.sess.Phase {
	case focusflow.FocusPhase:
		total += e.focusSeconds() - e.sess.RemainingSeconds
	case focusflow.BreakPhase:
		// break implies the cycle's focus phase ran to zero but is not
		// yet acknowledged as a completed cycle
		if e.sess.Status != focusflow.SessionCycleComplete {
			total += e.focusSeconds()
		}
	}
	return total
}

// RetryCycleCompletion re-issues the cycle-boundary completion call after
// it failed, from the Paused(Break, 0) state the failure left behind.
func (e *Engine) RetryCycleCompletion(ctx context.Context) error {
	e.mu.Lock()
	ok := e.created &&
		e.sess.Phase == focusflow.BreakPhase &&
		e.sess.Status == focusflow.SessionPaused &&
		e.sess.RemainingSeconds == 0
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: no cycle boundary to retry", focusflow.ErrInvalidTransition)
	}
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}
	e.mu.Unlock()
	return e.completeCycle(ctx)
}

// handleTick consumes clock ticks. Remaining time only moves while Running;
// a straggler tick that lost a race with Pause is dropped here.
func (e *Engine) handleTick(remaining int) {
	e.mu.Lock()
	if !e.created || e.sess.Status != focusflow.SessionRunning {
		e.mu.Unlock()
		return
	}
	before := e.sess
	if remaining < 0 {
		remaining = 0
	}
	e.sess.RemainingSeconds = remaining
	curr := e.sess
	e.mu.Unlock()
	e.fireChange(before, curr)
}

// handleExpired consumes the clock's terminal signal. Expiry is
// authoritative over a pause that arrived too late to stop it, so Paused
// status does not suppress the phase transition.
func (e *Engine) handleExpired() {
	e.mu.Lock()
	if !e.created {
		e.mu.Unlock()
		return
	}
	switch e.sess.Status {
	case focusflow.SessionRunning, focusflow.SessionPaused:
	default:
		e.mu.Unlock()
		return
	}

	// the clock stops itself at zero, but a raced pause may have left it
	// in an odd spot; make the stop unconditional
	e.clock.Stop()

	if e.sess.Phase == focusflow.FocusPhase {
		// wait for an explicit BeginBreak; no auto-start
		before := e.sess
		e.sess.Status = focusflow.SessionPaused
		e.sess.RemainingSeconds = 0
		curr := e.sess
		e.mu.Unlock()
		e.fireChange(before, curr)
		return
	}

	before := e.sess
	e.sess.Status = focusflow.SessionPaused
	e.sess.RemainingSeconds = 0
	curr := e.sess
	e.mu.Unlock()
	e.fireChange(before, curr)

	if err := e.completeCycle(e.parentCtx); err != nil {
		e.l.Error("cycle completion failed", "sessionID", curr.ID, "err", err)
		if e.onAsyncError != nil {
			e.onAsyncError(err)
		}
	}
}

// completeCycle issues the remote completion for a break-phase expiry. A
// cycle not acknowledged by the server is never counted: on failure the
// session stays Paused(Break) for retry.
func (e *Engine) completeCycle(ctx context.Context) error {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return focusflow.ErrCommandPending
	}
	e.pending = true
	ep := e.epoch
	id := e.sess.ID
	actual := e.actualFocusSecondsLocked()
	e.mu.Unlock()

	result, err := e.svc.CompleteSession(ctx, id, actual)

	e.mu.Lock()
	e.pending = false
	if e.epoch != ep {
		e.mu.Unlock()
		return focusflow.ErrStaleSession
	}
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("complete cycle for session %s: %w", id, err)
	}

	before := e.sess
	e.sess.CycleCount++
	e.sess.Status = focusflow.SessionCycleComplete
	curr := e.sess
	record := focusflow.CycleRecord{
		SessionID:    curr.ID,
		GoalLabel:    curr.GoalLabel,
		Cycle:        curr.CycleCount,
		FocusSeconds: e.focusSeconds(),
		BreakSeconds: e.breakSeconds(),
		CompletedAt:  time.Now(),
	}
	e.mu.Unlock()

	e.l.Info("cycle completed", "sessionID", curr.ID, "cycle", curr.CycleCount)
	e.fireChange(before, curr)
	if e.onCycleComplete != nil {
		e.onCycleComplete(record, result)
	}
	return nil
}
