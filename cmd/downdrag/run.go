package main

import (
	"fmt"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	res, err := deps.Pipeline.Run(deps.Ctx, deps.Sink)
	fmt.Fprintf(deps.Stdout, "Wrote %d records (%d skipped)\n", res.Written, res.Skipped)
	if err != nil {
		deps.Logger.Error("run failed", "err", err)
		return err
	}
	deps.Logger.Info("run complete", "written", res.Written, "skipped", res.Skipped)
	return nil
}
