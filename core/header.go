package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/basket/internal/contract"
)

// logReportHeader prints what is being analyzed to stderr, so piped output stays clean.
func logReportHeader(ctx context.Context, cfg *contract.Config, report, sourceDesc string) {
	if shouldSuppressHeader(ctx) {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "🛒 Source: %s (Report: %s)\n", sourceDesc, report)
	if !cfg.WindowStart.IsZero() || !cfg.WindowEnd.IsZero() {
		_, _ = fmt.Fprintf(os.Stderr, "📅 Window: %s → %s\n", formatBound(cfg.WindowStart), formatBound(cfg.WindowEnd))
	}
}

// formatBound renders a window bound, where the zero time means unbounded.
func formatBound(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format(contract.DateTimeFormat)
}
