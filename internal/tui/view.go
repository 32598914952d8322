package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amholt/bravely/internal/leveling"
	"github.com/amholt/bravely/internal/reconcile"
)

const xpBarWidth = 30

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	ui := m.rec.UI()

	var content string
	switch ui.Screen {
	case reconcile.ScreenDashboard:
		content = m.viewDashboard()
	case reconcile.ScreenLog, reconcile.ScreenGoal:
		if m.form != nil {
			content = m.form.View()
		}
	case reconcile.ScreenHistory:
		content = m.viewHistory()
	case reconcile.ScreenPIN:
		content = m.viewPIN()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	ui := m.rec.UI()
	status, _ := m.rec.Status()

	tab := "coachee"
	if ui.ActiveTab == reconcile.TabMentor {
		tab = "mentor"
	}

	indicator := dimStyle.Render(string(status))
	if status == reconcile.ConnError {
		indicator = errorStyle.Render(string(status))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("bravely"),
		dimStyle.Render(" "+tab+" "),
		indicator,
	)
}

func (m Model) viewDashboard() string {
	state := m.rec.Snapshot()
	ui := m.rec.UI()

	var b strings.Builder
	fmt.Fprintf(&b, "Level %d", state.Level)
	if state.Level >= 6 {
		b.WriteString(" — Legend")
	}
	fmt.Fprintf(&b, "  (%d XP)\n", state.Experience)
	b.WriteString(xpBar(state.Experience, state.Level))
	fmt.Fprintf(&b, "\nStreak: %d\n", state.Streak)

	g := state.WeeklyGoal
	goalLine := fmt.Sprintf("%s  %d/%d", g.Title, g.Progress, g.Target)
	if g.Progress > g.Target {
		goalLine += "  (overachieving!)"
	}

	sections := []string{
		cardStyle.Render(b.String()),
		cardStyle.Render("Weekly goal\n" + goalLine),
	}
	if ui.Celebrating {
		sections = append(sections, celebrateStyle.Render("★ Level up! Keep going ★"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func xpBar(experience, level int) string {
	frac := leveling.ProgressFraction(experience, level)
	filled := int(frac * float64(xpBarWidth))
	return barFillStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", xpBarWidth-filled))
}

func (m Model) viewHistory() string {
	state := m.rec.Snapshot()
	if len(state.Actions) == 0 {
		return dimStyle.Render("\nNo brave actions logged yet. Press 'a' to log one.\n")
	}

	limit := len(state.Actions)
	if m.height > 8 && limit > m.height-8 {
		limit = m.height - 8
	}

	var b strings.Builder
	for _, a := range state.Actions[:limit] {
		fmt.Fprintf(&b, "%s  %-36s  %2d  %-8s  +%d XP\n", a.Date, truncate(a.Title, 36), a.Discomfort, a.Feeling, a.XP)
	}
	if limit < len(state.Actions) {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("... and %d more", len(state.Actions)-limit)))
	}
	return cardStyle.Render(b.String())
}

func (m Model) viewPIN() string {
	ui := m.rec.UI()
	masked := strings.Repeat("•", len(ui.PINBuffer))

	lines := []string{
		"Mentor PIN:",
		"",
		masked + "_",
	}
	if ui.PINError {
		lines = append(lines, "", errorStyle.Render("Wrong PIN"))
	}
	lines = append(lines, "", dimStyle.Render("[enter] confirm  [esc] cancel"))

	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
