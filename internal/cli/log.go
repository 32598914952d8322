package cli

import (
	"fmt"

	"github.com/amholt/bravely/internal/ledger"
	"github.com/amholt/bravely/internal/leveling"
)

type LogCmd struct {
	Title      string `arg:"" help:"What you did."`
	Discomfort int    `short:"d" help:"How uncomfortable it was (1-10)." required:""`
	Feeling    string `short:"f" help:"How you felt afterwards (proud|relieved|neutral|stressed)." default:"proud"`
}

func (c *LogCmd) Validate() error {
	if c.Discomfort < ledger.MinDiscomfort || c.Discomfort > ledger.MaxDiscomfort {
		return fmt.Errorf("discomfort must be between %d and %d", ledger.MinDiscomfort, ledger.MaxDiscomfort)
	}
	_, err := parseFeeling(c.Feeling)
	return err
}

func (c *LogCmd) Run(ctx *Context) error {
	feeling, err := parseFeeling(c.Feeling)
	if err != nil {
		return err
	}

	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	before := r.Snapshot().Level
	action, state := r.RecordAction(ledger.Draft{
		Title:      c.Title,
		Discomfort: c.Discomfort,
		Feeling:    feeling,
	})

	if _, err := r.Status(); err != nil {
		return fmt.Errorf("logged locally but failed to save: %w", err)
	}

	fmt.Printf("Logged: %s (+%d XP)\n", action.Title, action.XP)
	if state.Level > before {
		fmt.Printf("Level up! You are now level %d\n", state.Level)
	} else {
		frac := leveling.ProgressFraction(state.Experience, state.Level)
		fmt.Printf("Level %d, %d XP (%.0f%% to next)\n", state.Level, state.Experience, frac*100)
	}
	return nil
}
