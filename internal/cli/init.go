package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	r, gw, err := ctx.StartReconciler()
	if err != nil {
		return err
	}
	defer gw.Close()
	defer r.Stop()

	fmt.Printf("Initialized bravely state document at: %s\n", ctx.Config.DocumentPath())
	return nil
}
