// Package cli — ANSI color constants for plain (non-TUI) command output.
package cli

import "os"

// ANSI escape sequences. Empty when NO_COLOR is set.
var (
	ansiReset  string
	ansiBold   string
	ansiGreen  string
	ansiYellow string
	ansiRed    string
	ansiCyan   string
	ansiGray   string
)

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return
	}
	ansiReset = "\033[0m"
	ansiBold = "\033[1m"
	ansiGreen = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed = "\033[31m"
	ansiCyan = "\033[36m"
	ansiGray = "\033[90m"
}
