package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amholt/bravely/internal/goal"
	"github.com/amholt/bravely/internal/ledger"
	"github.com/amholt/bravely/internal/reconcile"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StateChangedMsg:
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && m.form == nil && m.rec.UI().Screen != reconcile.ScreenPIN {
			m.quitting = true
			return m, tea.Quit
		}
	}

	ui := m.rec.UI()
	switch ui.Screen {
	case reconcile.ScreenLog, reconcile.ScreenGoal:
		if m.form != nil {
			return m.updateForm(msg)
		}
	case reconcile.ScreenPIN:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m.updatePIN(msg), nil
		}
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Tab):
		m.rec.UpdateUI(func(ui *reconcile.UIState) {
			switch ui.Screen {
			case reconcile.ScreenDashboard:
				ui.Screen = reconcile.ScreenHistory
			default:
				ui.Screen = reconcile.ScreenDashboard
			}
			ui.Celebrating = false
		})

	case key.Matches(msg, m.keys.Log):
		m.logForm = &LogFormModel{Discomfort: 5, Feeling: "proud"}
		m.form = newLogForm(m.logForm)
		m.rec.UpdateUI(func(ui *reconcile.UIState) {
			ui.Screen = reconcile.ScreenLog
			ui.ActionDraft = &ledger.Draft{}
			ui.Celebrating = false
		})
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Bump):
		m.rec.BumpGoalProgress(1)

	case key.Matches(msg, m.keys.Mentor):
		ui := m.rec.UI()
		if ui.ActiveTab == reconcile.TabMentor {
			m.rec.UpdateUI(func(ui *reconcile.UIState) {
				ui.ActiveTab = reconcile.TabCoachee
				ui.Screen = reconcile.ScreenDashboard
			})
		} else {
			m.rec.UpdateUI(func(ui *reconcile.UIState) {
				ui.Screen = reconcile.ScreenPIN
				ui.PINBuffer = ""
				ui.PINError = false
			})
		}
	}
	return m, nil
}

func (m Model) updatePIN(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.rec.UpdateUI(func(ui *reconcile.UIState) {
			ui.Screen = reconcile.ScreenDashboard
			ui.PINBuffer = ""
			ui.PINError = false
		})
	case "enter":
		ui := m.rec.UI()
		if ui.PINBuffer == m.mentorPIN {
			m.rec.UpdateUI(func(ui *reconcile.UIState) {
				ui.ActiveTab = reconcile.TabMentor
				ui.Screen = reconcile.ScreenGoal
				ui.PINBuffer = ""
				ui.PINError = false
			})
			return m.openGoalForm()
		}
		m.rec.UpdateUI(func(ui *reconcile.UIState) {
			ui.PINBuffer = ""
			ui.PINError = true
		})
	case "backspace":
		m.rec.UpdateUI(func(ui *reconcile.UIState) {
			if len(ui.PINBuffer) > 0 {
				ui.PINBuffer = ui.PINBuffer[:len(ui.PINBuffer)-1]
			}
		})
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.rec.UpdateUI(func(ui *reconcile.UIState) {
				ui.PINBuffer += s
				ui.PINError = false
			})
		}
	}
	return m
}

func (m Model) openGoalForm() Model {
	g := m.rec.Snapshot().WeeklyGoal
	m.goalForm = &GoalFormModel{
		Title:       g.Title,
		Description: g.Description,
		Deadline:    g.Deadline,
		Target:      strconv.Itoa(g.Target),
		Progress:    strconv.Itoa(g.Progress),
	}
	m.form = newGoalForm(m.goalForm)
	m.rec.UpdateUI(func(ui *reconcile.UIState) {
		ui.GoalEditing = true
		d := goal.BeginEdit()
		ui.GoalDraft = &d
	})
	return m
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		screen := m.rec.UI().Screen
		m.form = nil
		if screen == reconcile.ScreenLog {
			m.submitLog()
		} else {
			m.submitGoal()
		}
	case huh.StateAborted:
		m.form = nil
		m.rec.UpdateUI(func(ui *reconcile.UIState) {
			ui.Screen = reconcile.ScreenDashboard
			ui.ActionDraft = nil
			ui.GoalEditing = false
			ui.GoalDraft = nil
		})
	}
	return m, cmd
}

func (m *Model) submitLog() {
	f := m.logForm
	m.logForm = nil

	before := m.rec.Snapshot().Level
	_, state := m.rec.RecordAction(ledger.Draft{
		Title:      f.Title,
		Discomfort: f.Discomfort,
		Feeling:    f.Feeling,
	})
	leveledUp := state.Level > before

	m.rec.UpdateUI(func(ui *reconcile.UIState) {
		ui.Screen = reconcile.ScreenDashboard
		ui.ActionDraft = nil
		ui.Celebrating = leveledUp
	})
}

func (m *Model) submitGoal() {
	f := m.goalForm
	m.goalForm = nil

	draft := goal.BeginEdit()
	draft.SetTitle(f.Title)
	draft.SetDescription(f.Description)
	draft.SetDeadline(f.Deadline)
	if n, err := strconv.Atoi(f.Target); err == nil {
		draft.SetTarget(n)
	}
	if n, err := strconv.Atoi(f.Progress); err == nil {
		draft.SetProgress(n)
	}

	// A rejected commit (e.g. non-positive target) leaves the current
	// goal untouched; the dashboard simply shows the old goal.
	_ = m.rec.CommitGoal(draft)

	m.rec.UpdateUI(func(ui *reconcile.UIState) {
		ui.Screen = reconcile.ScreenDashboard
		ui.ActiveTab = reconcile.TabCoachee
		ui.GoalEditing = false
		ui.GoalDraft = nil
	})
}
