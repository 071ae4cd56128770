package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(attrdump.ExitCode(err))
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RunService   attrdump.RunService
	ValueService attrdump.ValueService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("attrdump"),
		kong.Description("Dump one attribute of every post in a growing paginated XML API"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return attrdump.Errorf(attrdump.EINVALID, "no command specified. Run 'attrdump --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Verbose = cli.Verbose
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cmd := strings.Fields(kongCtx.Command())[0]
	if needsDB(cmd) {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set ATTRDUMP_DB to use a different database path\n")
			return attrdump.WrapError(attrdump.EIO, err, "failed to open database at %q", m.DBPath)
		}
		defer m.Close()

		m.RunService = sqlite.NewRunService(m.DB)
		m.ValueService = sqlite.NewValueService(m.DB)
		deps.DB = m.DB
		deps.Runs = m.RunService
		deps.Values = m.ValueService
	}

	return kongCtx.Run(deps)
}

func needsDB(cmd string) bool {
	switch cmd {
	case "crawl", "runs", "export":
		return true
	}
	return false
}

func defaultDBPath() string {
	if path := os.Getenv("ATTRDUMP_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "attrdump.db"
	}
	dir := filepath.Join(home, ".attrdump")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "attrdump.db")
}
