package fs

import (
	"bufio"
	"fmt"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/attrdump"
)

// maxLineSize bounds a single value read back by Dedupe.
const maxLineSize = 1 << 20

// DedupeStats describes a deduplicated file.
type DedupeStats struct {
	Lines  int
	Unique int
	// Digest is the xxhash of the sorted, unique output.
	Digest string
}

// Dedupe writes the sorted unique lines of src to dst, like
// `sort --unique src > dst`. Blank lines are dropped.
func Dedupe(src, dst string) (DedupeStats, error) {
	var stats DedupeStats

	in, err := os.Open(src)
	if err != nil {
		return stats, err
	}
	defer in.Close()

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		stats.Lines++
		seen[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading %s: %w", src, err)
	}

	lines := make([]string, 0, len(seen))
	for line := range seen {
		lines = append(lines, line)
	}
	slices.Sort(lines)

	digest, err := WriteLines(dst, lines)
	if err != nil {
		return stats, err
	}
	stats.Unique = len(lines)
	stats.Digest = digest
	return stats, nil
}

// WriteLines writes lines to path, one per line, and returns their xxhash
// digest in hex. Line breaks inside a line are replaced by spaces.
func WriteLines(path string, lines []string) (string, error) {
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}

	h := xxhash.New()
	w := bufio.NewWriter(out)
	for _, line := range lines {
		line = attrdump.SingleLine(line)
		_, _ = h.WriteString(line)
		_, _ = h.WriteString("\n")
		if _, err := w.WriteString(line); err != nil {
			out.Close()
			return "", err
		}
		if err := w.WriteByte('\n'); err != nil {
			out.Close()
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}
