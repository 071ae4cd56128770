package main

import (
	"fmt"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	values, err := deps.Values.DistinctValues(deps.Ctx, c.RunID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", attrdump.ErrorMessage(err))
		return err
	}

	digest, err := fs.WriteLines(c.Output, values)
	if err != nil {
		err = attrdump.WrapError(attrdump.EIO, err, "failed to write %s", c.Output)
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %d values to %s (xxhash %s)\n", len(values), c.Output, digest)
	return nil
}
