package cli

import "fmt"

type HistoryCmd struct {
	Limit int `short:"n" help:"Max entries to show." default:"20"`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	state := r.Snapshot()
	if len(state.Actions) == 0 {
		fmt.Println("No brave actions logged yet.")
		return nil
	}

	// Actions are stored newest-first; print them in that order.
	count := len(state.Actions)
	if c.Limit > 0 && count > c.Limit {
		count = c.Limit
	}
	for _, a := range state.Actions[:count] {
		fmt.Printf("%s  %-40s  discomfort %2d  %-8s  +%d XP\n", a.Date, a.Title, a.Discomfort, a.Feeling, a.XP)
	}
	if count < len(state.Actions) {
		fmt.Printf("... and %d more\n", len(state.Actions)-count)
	}
	return nil
}
