package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/crawl"
	lochttp "github.com/fwojciec/attrdump/http"
	attrslog "github.com/fwojciec/attrdump/slog"
	"github.com/fwojciec/attrdump/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Verbose bool
	DB      *sqlite.DB
	Runs    attrdump.RunService
	Values  attrdump.ValueService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every request and write"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl every page and write one attribute per line"`
	Count  CountCmd  `cmd:"" help:"Print the current total item count"`
	Dedupe DedupeCmd `cmd:"" help:"Sort and deduplicate a raw output file"`
	Runs   RunsCmd   `cmd:"" help:"List recorded crawl runs"`
	Export ExportCmd `cmd:"" help:"Write the distinct values stored for a run"`
}

// SourceFlags configure the API client and its retry policy.
type SourceFlags struct {
	BaseURL     string        `name:"base-url" env:"ATTRDUMP_BASE_URL" default:"https://safebooru.org/index.php" help:"API endpoint"`
	UserAgent   string        `name:"user-agent" help:"User-Agent header (default: desktop browser)"`
	Timeout     time.Duration `default:"30s" help:"Per-request timeout"`
	HostDelay   time.Duration `name:"host-delay" default:"5s" help:"Retry delay after a host resolution failure"`
	ServerDelay time.Duration `name:"server-delay" default:"2s" help:"Retry delay after a 5xx response"`
	SocketDelay time.Duration `name:"socket-delay" default:"0s" help:"Retry delay after a socket failure"`
}

// fetcher builds the HTTP page fetcher, wrapped with logging when verbose.
func (f SourceFlags) fetcher(deps *Dependencies) attrdump.PageFetcher {
	opts := []lochttp.Option{lochttp.WithTimeout(f.Timeout)}
	if f.UserAgent != "" {
		opts = append(opts, lochttp.WithUserAgent(f.UserAgent))
	}
	var fetcher attrdump.PageFetcher = lochttp.NewPageFetcher(f.BaseURL, opts...)
	if deps.Verbose {
		fetcher = attrslog.NewLoggingPageFetcher(fetcher, deps.Logger)
	}
	return fetcher
}

func (f SourceFlags) retryPolicy() *crawl.RetryPolicy {
	return &crawl.RetryPolicy{
		HostDelay:   f.HostDelay,
		SocketDelay: f.SocketDelay,
		ServerDelay: f.ServerDelay,
	}
}

// retryLogger reports retries as warnings.
func retryLogger(logger *slog.Logger) crawl.LogFunc {
	return func(format string, args ...any) {
		logger.Warn(fmt.Sprintf(format, args...))
	}
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	SourceFlags `embed:""`

	Output         string        `arg:"" optional:"" default:"links.txt" help:"Output file"`
	Attribute      string        `short:"a" default:"sample_url" help:"Attribute to extract (file_url, sample_url, preview_url, id, source)"`
	PoolSize       int           `name:"pool-size" short:"c" default:"16" help:"Concurrent fetches"`
	PageSize       int           `name:"page-size" default:"100" help:"Items per page"`
	DrainTimeout   time.Duration `name:"drain-timeout" default:"60s" help:"Wait for in-flight pages after each pass (0 waits forever)"`
	ExpectedValues uint          `name:"expected-values" default:"1000000" help:"Sizing hint for the duplicate estimate"`
	KeepRaw        bool          `name:"keep-raw" help:"Keep the raw output next to the deduplicated file"`
	NoDedupe       bool          `name:"no-dedupe" help:"Write raw output directly to the output file"`
	Store          bool          `help:"Also store values in the database for export"`
}

// CountCmd is the "count" subcommand.
type CountCmd struct {
	SourceFlags `embed:""`
}

// DedupeCmd is the "dedupe" subcommand.
type DedupeCmd struct {
	Input  string `arg:"" help:"Raw input file"`
	Output string `arg:"" help:"Sorted unique output file"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Attribute string `short:"a" help:"Only show runs for this attribute"`
	Limit     int    `short:"n" default:"20" help:"Maximum runs to show"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	RunID  string `arg:"" name:"run-id" help:"Run ID"`
	Output string `arg:"" help:"Output file"`
}
