package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/focusflow/focusflow-go"
	"github.com/focusflow/focusflow-go/engine"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	phaseStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	clockStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	coinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

type sessionMsg struct {
	sess focusflow.Session
}

type errMsg struct {
	err error
}

type rewardMsg struct {
	event focusflow.RewardEvent
}

type timerModel struct {
	ctx context.Context
	eng *engine.Engine
	cfg focusflow.Config

	sess         focusflow.Session
	bar          progress.Model
	err          error
	reward       *focusflow.RewardEvent
	confirmReset bool
	quitting     bool
}

func newTimerModel(ctx context.Context, eng *engine.Engine, cfg focusflow.Config) timerModel {
	return timerModel{
		ctx:  ctx,
		eng:  eng,
		cfg:  cfg,
		sess: eng.Snapshot(),
		bar:  progress.New(progress.WithDefaultGradient()),
	}
}

func (m timerModel) Init() tea.Cmd {
	return nil
}

// engineCmd runs an engine command off the update loop so a pending remote
// call never blocks rendering or the clock.
func engineCmd(f func() error) tea.Cmd {
	return func() tea.Msg {
		if err := f(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		m.sess = msg.sess
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case rewardMsg:
		m.reward = &msg.event
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key != "r" {
			m.confirmReset = false
		}
		switch key {
		case "q", "ctrl+c":
			// leaving the screen stops the countdown but never the
			// remote session
			m.eng.Suspend()
			m.quitting = true
			return m, tea.Quit

		case "s":
			m.err = nil
			return m, engineCmd(func() error { return m.eng.StartOrResume(m.ctx) })

		case "p":
			m.err = nil
			return m, engineCmd(func() error { return m.eng.Pause(m.ctx) })

		case "b":
			m.err = nil
			return m, engineCmd(func() error { return m.eng.BeginBreak() })

		case "c":
			m.err = nil
			return m, engineCmd(func() error { return m.eng.ContinueNextCycle(m.ctx) })

		case "y":
			m.err = nil
			return m, engineCmd(func() error { return m.eng.RetryCycleCompletion(m.ctx) })

		case "x":
			m.err = nil
			m.quitting = true
			return m, tea.Sequence(
				engineCmd(func() error { return m.eng.Stop(m.ctx) }),
				tea.Quit,
			)

		case "r":
			if !m.confirmReset {
				m.confirmReset = true
				return m, nil
			}
			m.confirmReset = false
			m.err = nil
			m.quitting = true
			return m, tea.Sequence(
				engineCmd(func() error { return m.eng.Reset(m.ctx, true) }),
				tea.Quit,
			)
		}
	}
	return m, nil
}

func (m timerModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.sess
	duration := int(m.cfg.FocusDuration.Seconds())
	if s.Phase == focusflow.BreakPhase {
		duration = int(m.cfg.BreakDuration.Seconds())
	}
	percent := 0.0
	if duration > 0 {
		percent = 1 - float64(s.RemainingSeconds)/float64(duration)
	}

	view := titleStyle.Render(s.GoalLabel) + "\n\n"
	view += fmt.Sprintf("%s  %s\n", phaseStyle.Render(s.Phase.String()), statusStyle.Render(s.Status.String()))
	view += clockStyle.Render(fmt.Sprintf("%02d:%02d", s.RemainingSeconds/60, s.RemainingSeconds%60))
	view += fmt.Sprintf("  cycle %d\n", s.CycleCount)
	view += m.bar.ViewAs(percent) + "\n\n"

	if m.reward != nil && m.reward.Granted {
		view += coinStyle.Render(fmt.Sprintf("+%d coins (%s)", m.reward.Coins, m.reward.Trigger)) + "\n"
	}
	if m.err != nil {
		view += errStyle.Render("error: "+m.err.Error()) + "\n"
	}
	if m.confirmReset {
		view += errStyle.Render("press r again to reset this session") + "\n"
	}

	view += hintStyle.Render("s start/resume · p pause · b break · c next cycle · y retry · x stop · r reset · q quit")
	return view + "\n"
}
