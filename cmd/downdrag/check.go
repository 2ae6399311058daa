package main

import (
	"fmt"

	"github.com/CodeBeast357/downdrag"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	prog, err := compiler().Compile(deps.Config, deps.Now)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", downdrag.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Configuration OK: %d profiles, %d details, %d outputs\n",
		len(prog.Profiles), len(prog.Details), len(deps.Config.Outputs))
	return nil
}

// Run executes the fields command.
func (c *FieldsCmd) Run(deps *Dependencies) error {
	for _, f := range downdrag.Fields(deps.Config.Details) {
		fmt.Fprintf(deps.Stdout, "%s\t%s\n", f.Name, f.Kind)
	}
	return nil
}
