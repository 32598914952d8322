package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amholt/bravely/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	p := tea.NewProgram(tui.NewModel(r, ctx.Config.MentorPIN), tea.WithAltScreen())

	// Remote snapshots and write-status changes repaint the view.
	r.SetOnChange(func() {
		p.Send(tui.StateChangedMsg{})
	})
	defer r.SetOnChange(nil)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
