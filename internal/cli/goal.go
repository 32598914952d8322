package cli

import (
	"fmt"

	"github.com/amholt/bravely/internal/goal"
)

type GoalShowCmd struct{}

func (c *GoalShowCmd) Run(ctx *Context) error {
	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	g := r.Snapshot().WeeklyGoal
	fmt.Printf("Weekly goal: %s\n", g.Title)
	if g.Description != "" {
		fmt.Printf("  %s\n", g.Description)
	}
	fmt.Printf("  Progress: %d/%d", g.Progress, g.Target)
	if g.Progress > g.Target {
		fmt.Print(" (overachieving!)")
	}
	fmt.Println()
	if g.Deadline != "" {
		fmt.Printf("  Deadline: %s\n", g.Deadline)
	}
	return nil
}

type GoalSetCmd struct {
	Title       string `short:"t" help:"Goal title."`
	Description string `short:"D" help:"Goal description."`
	Deadline    string `short:"l" help:"Deadline label, e.g. 'Sunday'."`
	Target      int    `short:"n" help:"Target count." default:"-1"`
	Progress    int    `short:"p" help:"Progress count." default:"-1"`
}

func (c *GoalSetCmd) Run(ctx *Context) error {
	draft := goal.BeginEdit()
	if c.Title != "" {
		draft.SetTitle(c.Title)
	}
	if c.Description != "" {
		draft.SetDescription(c.Description)
	}
	if c.Deadline != "" {
		draft.SetDeadline(c.Deadline)
	}
	if c.Target >= 0 {
		draft.SetTarget(c.Target)
	}
	if c.Progress >= 0 {
		draft.SetProgress(c.Progress)
	}

	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	if err := r.CommitGoal(draft); err != nil {
		return err
	}
	if _, err := r.Status(); err != nil {
		return fmt.Errorf("goal updated locally but failed to save: %w", err)
	}

	g := r.Snapshot().WeeklyGoal
	fmt.Printf("Weekly goal set: %s (%d/%d)\n", g.Title, g.Progress, g.Target)
	return nil
}

type GoalBumpCmd struct {
	Delta int `arg:"" optional:"" help:"Progress increment." default:"1"`
}

func (c *GoalBumpCmd) Run(ctx *Context) error {
	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}

	state := r.BumpGoalProgress(c.Delta)

	// One-shot command: flush the debounced write before exiting.
	r.Stop()
	gw.Close()

	g := state.WeeklyGoal
	fmt.Printf("Progress: %d/%d\n", g.Progress, g.Target)
	return nil
}
