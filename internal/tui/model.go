package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amholt/bravely/internal/models"
	"github.com/amholt/bravely/internal/reconcile"
)

// StateChangedMsg is sent by the reconciler's change hook so the view
// refreshes when a remote snapshot or write-status change lands.
type StateChangedMsg struct{}

type LogFormModel struct {
	Title      string
	Discomfort int
	Feeling    models.Feeling
}

type GoalFormModel struct {
	Title       string
	Description string
	Deadline    string
	Target      string
	Progress    string
}

type Model struct {
	rec       *reconcile.Reconciler
	mentorPIN string

	keys     KeyMap
	help     help.Model
	form     *huh.Form
	logForm  *LogFormModel
	goalForm *GoalFormModel

	quitting bool
	width    int
	height   int
}

func NewModel(rec *reconcile.Reconciler, mentorPIN string) Model {
	return Model{
		rec:       rec,
		mentorPIN: mentorPIN,
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.rec.UI().Screen {
	case reconcile.ScreenDashboard:
		keys = append(keys, m.keys.Log, m.keys.Bump)
	case reconcile.ScreenHistory:
		keys = append(keys, m.keys.Log)
	}
	keys = append(keys, m.keys.Mentor)
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Tab, m.keys.Quit, m.keys.Help},
		{m.keys.Log, m.keys.Bump, m.keys.Mentor},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func newLogForm(f *LogFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What brave thing did you do?").
				Value(&f.Title),
			huh.NewSelect[int]().
				Title("How uncomfortable was it?").
				Options(huh.NewOptions(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)...).
				Value(&f.Discomfort),
			huh.NewSelect[models.Feeling]().
				Title("How do you feel now?").
				Options(huh.NewOptions(
					models.FeelingProud,
					models.FeelingRelieved,
					models.FeelingNeutral,
					models.FeelingStressed,
				)...).
				Value(&f.Feeling),
		),
	)
}

func newGoalForm(f *GoalFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal").Value(&f.Title),
			huh.NewInput().Title("Description").Value(&f.Description),
			huh.NewInput().Title("Deadline").Value(&f.Deadline),
			huh.NewInput().Title("Target").Value(&f.Target),
			huh.NewInput().Title("Progress").Value(&f.Progress),
		),
	)
}
