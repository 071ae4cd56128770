package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/attrdump"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := attrdump.RunFilter{Limit: c.Limit}
	if c.Attribute != "" {
		attr, err := attrdump.ParseAttribute(c.Attribute)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", attrdump.ErrorMessage(err))
			return err
		}
		filter.Attribute = &attr
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", attrdump.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'attrdump crawl' to start one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-8s  %-11s  count=%d pages=%d growth=%d values=%d dups=%d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.Attribute,
			r.FinalCount, r.Pages, r.GrowthPages, r.Values, r.Duplicates, r.Output)
		if r.Error != "" {
			fmt.Fprintf(deps.Stdout, "    error: %s\n", r.Error)
		}
	}

	return nil
}
