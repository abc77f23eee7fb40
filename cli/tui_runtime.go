package cli

import (
	"os"
	"strings"
)

func isTerminalFD(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func isInteractiveTerminal() bool {
	if !isTerminalFD(os.Stdin) || !isTerminalFD(os.Stdout) {
		return false
	}
	term := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return term != "" && term != "dumb"
}

// Input modes for the type command.
const (
	inputMouse    = "mouse"
	inputSwitches = "switches"
)

func normalizeInputMode(mode string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", inputMouse, "pointer":
		return inputMouse, true
	case inputSwitches, "switch", "buttons":
		return inputSwitches, true
	default:
		return "", false
	}
}

// shouldShowProgress reports whether train prints per-file progress
// lines.
func shouldShowProgress(isTTY, quiet bool) bool {
	return isTTY && !quiet
}
