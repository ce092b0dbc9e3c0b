package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// statusLabelWidth fits the longest summary label ("Dated by filename:").
const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = [...]struct {
	tag   string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func styleFor(kind statusKind) (string, string) {
	if kind < 0 || int(kind) >= len(statusStyles) {
		kind = statusInfo
	}
	s := statusStyles[kind]
	return s.tag, s.color
}

// renderStatusLine prints "  Label:   [TAG] message", padded so the tags of a
// block line up.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag, color := styleFor(kind)
	var b strings.Builder
	fmt.Fprintf(&b, "%s%-*s [%s]", statusIndent, statusLabelWidth, label+":", tag)
	if message != "" {
		b.WriteString(" " + message)
	}
	if colorize {
		return color + b.String() + ansiReset
	}
	return b.String()
}

// countStatus picks OK for zero problems and the given kind otherwise.
func countStatus(n int, problem statusKind) statusKind {
	if n == 0 {
		return statusOK
	}
	return problem
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	lines := []string{heading, strings.Repeat("-", len(heading))}
	if colorize {
		for i := range lines {
			lines[i] = ansiBlue + lines[i] + ansiReset
		}
	}
	return lines
}

// shouldColorize enables ANSI colors only when writing to a terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
