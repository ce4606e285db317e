package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/basket/schema"
)

// Color variables for console output.
var (
	LossColor      = color.New(color.FgRed, color.Bold)     // LossColor represents standard danger.
	PremiumColor   = color.New(color.FgGreen, color.Bold)   // PremiumColor represents the best performers.
	StandardColor  = color.New(color.FgCyan)                // StandardColor represents steady, unremarkable groups.
	EmergingColor  = color.New(color.FgYellow)              // EmergingColor represents low-volume groups.
	AttentionColor = color.New(color.FgMagenta, color.Bold) // AttentionColor represents customers slipping away.
)

// GetTierColorLabel returns a colored tier label for console output (table).
func GetTierColorLabel(tier schema.Tier) string {
	text := string(tier)
	switch tier {
	case schema.TierLossMaking:
		return LossColor.Sprint(text)
	case schema.TierPremium:
		return PremiumColor.Sprint(text)
	case schema.TierStandard:
		return StandardColor.Sprint(text)
	case schema.TierEmerging:
		return EmergingColor.Sprint(text)
	default:
		return text
	}
}

// GetSegmentColorLabel returns a colored segment label for console output (table).
func GetSegmentColorLabel(segment schema.Segment) string {
	text := string(segment)
	switch segment {
	case schema.Champions, schema.Loyal:
		return PremiumColor.Sprint(text)
	case schema.PotentialLoyalist, schema.NewCustomer, schema.Promising:
		return StandardColor.Sprint(text)
	case schema.CannotLoseThem, schema.AtRisk:
		return AttentionColor.Sprint(text)
	case schema.NeedAttention, schema.AboutToSleep:
		return EmergingColor.Sprint(text)
	default: // "Lost"
		return LossColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr so it never mixes with report output.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Info "+format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".basket_cache.db"
	}
	return filepath.Join(homeDir, ".basket_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".basket_runs.db"
	}
	return filepath.Join(homeDir, ".basket_runs.db")
}

// TruncateKey truncates a group key or identifier to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the "..." and at least one character.
func TruncateKey(key string, maxWidth int) string {
	runes := []rune(key)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return key
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseDate parses an absolute date as RFC3339 or YYYY-MM-DD (UTC midnight).
// An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// ParseSegment resolves a case-insensitive segment name, accepting dashes or
// underscores in place of spaces (e.g. "at-risk").
func ParseSegment(s string) (schema.Segment, error) {
	want := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, seg := range schema.AllSegments {
		if strings.ToLower(string(seg)) == want {
			return seg, nil
		}
	}
	return "", fmt.Errorf("invalid segment '%s'", s)
}

// NumberedLabels returns "Q1".."Qn" labels for a custom bucket count.
func NumberedLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Q%d", i+1)
	}
	return labels
}
