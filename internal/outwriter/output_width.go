package outwriter

import (
	"os"

	"github.com/huangsam/basket/internal/contract"
	"golang.org/x/term"
)

// Bounds for the key column of table output.
const (
	minKeyWidth = 12
	maxKeyWidth = 40
)

// getTerminalWidth returns the configured width override or the detected terminal width.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxKeyWidth calculates the maximum width for group keys and customer ids
// in table output, given the width already taken by the other columns.
func getMaxKeyWidth(cfg *contract.Config, fixedWidth int) int {
	available := getTerminalWidth(cfg) - fixedWidth
	if cfg.Detail {
		available -= 60 // Detail columns with formatting
	}
	if available < minKeyWidth {
		return minKeyWidth
	}
	if available > maxKeyWidth {
		return maxKeyWidth
	}
	return available
}
