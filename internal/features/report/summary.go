package report

// Batch report: a short summary of one link run, rendered as a bar chart
// and optionally delivered to a Telegram chat.

import (
	"fmt"
	"html"
	"strings"
	"time"

	"me-linker/internal/features/linker"
)

// Summary is what gets reported after a batch.
type Summary struct {
	Kind       string        `json:"kind"`
	Total      int           `json:"total"`
	Eligible   int           `json:"eligible"`
	Ineligible int           `json:"ineligible"`
	Skipped    int           `json:"skipped"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	ResultFile string        `json:"result_file"`
}

// NewSummary counts the outcome of a batch over total wallets.
func NewSummary(kind string, total int, res linker.Result, startedAt time.Time, resultFile string) Summary {
	return Summary{
		Kind:       kind,
		Total:      total,
		Eligible:   len(res.Eligible),
		Ineligible: len(res.Checked) - len(res.Eligible),
		Skipped:    len(res.Skipped),
		StartedAt:  startedAt,
		Duration:   time.Since(startedAt).Round(time.Second),
		ResultFile: resultFile,
	}
}

// Unprocessed is the number of wallets the batch never reached, e.g. after an interrupt.
func (s Summary) Unprocessed() int {
	n := s.Total - s.Eligible - s.Ineligible - s.Skipped
	if n < 0 {
		return 0
	}
	return n
}

// FormatSummary renders the Telegram caption (HTML parse mode).
func FormatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Link run: %s</b>\n", html.EscapeString(s.Kind))
	fmt.Fprintf(&b, "Wallets: %d\n", s.Total)
	fmt.Fprintf(&b, "✅ Eligible: %d\n", s.Eligible)
	fmt.Fprintf(&b, "❌ Ineligible: %d\n", s.Ineligible)
	fmt.Fprintf(&b, "⚠️ Skipped: %d\n", s.Skipped)
	if n := s.Unprocessed(); n > 0 {
		fmt.Fprintf(&b, "⏸ Not processed: %d\n", n)
	}
	fmt.Fprintf(&b, "Duration: %s", s.Duration)
	return b.String()
}
