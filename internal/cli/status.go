package cli

import (
	"fmt"

	"github.com/amholt/bravely/internal/leveling"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	status, lastErr := r.Status()
	state := r.Snapshot()

	fmt.Printf("Connection: %s\n", status)
	if lastErr != nil {
		fmt.Printf("  Last error: %v\n", lastErr)
	}
	fmt.Printf("Backend:    %s (%s)\n", ctx.Config.Backend, ctx.Config.DocumentPath())
	fmt.Printf("Level:      %d (%d XP, %.0f%% to next)\n",
		state.Level, state.Experience, leveling.ProgressFraction(state.Experience, state.Level)*100)
	fmt.Printf("Streak:     %d\n", state.Streak)
	fmt.Printf("Actions:    %d logged\n", len(state.Actions))
	return nil
}
