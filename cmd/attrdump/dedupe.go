package main

import (
	"fmt"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/fs"
)

// Run executes the dedupe command.
func (c *DedupeCmd) Run(deps *Dependencies) error {
	stats, err := fs.Dedupe(c.Input, c.Output)
	if err != nil {
		err = attrdump.WrapError(attrdump.EIO, err, "failed to deduplicate %s", c.Input)
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d lines, %d unique, xxhash %s\n", stats.Lines, stats.Unique, stats.Digest)
	return nil
}
