package main

import (
	"fmt"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/crawl"
)

// Run executes the count command.
func (c *CountCmd) Run(deps *Dependencies) error {
	crawler := &crawl.Crawler{
		Fetcher:     c.fetcher(deps),
		Attribute:   attrdump.AttributeID,
		RetryPolicy: c.retryPolicy(),
		Logger:      retryLogger(deps.Logger),
	}

	count, err := crawler.ProbeCount(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintln(deps.Stdout, count)
	return nil
}
