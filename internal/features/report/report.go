package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"me-linker/internal/infra/fs"
	logging "me-linker/internal/infra/log"
)

// Options says where report artifacts go and who gets notified.
type Options struct {
	Dir      string    // default data_out
	Notifier *Notifier // nil disables Telegram delivery
}

// Paths of the artifacts written for one run.
type Paths struct {
	Summary string
	Chart   string
}

func artifactPaths(dir string, s Summary) Paths {
	if dir == "" {
		dir = fs.DataOutDir
	}
	stamp := s.StartedAt.UTC().Format("20060102-150405")
	if s.StartedAt.IsZero() {
		stamp = time.Now().UTC().Format("20060102-150405")
	}
	base := fmt.Sprintf("%s-%s", s.Kind, stamp)
	return Paths{
		Summary: filepath.Join(dir, base+".json"),
		Chart:   filepath.Join(dir, base+".png"),
	}
}

// Publish stores the summary and chart and sends them to Telegram when configured.
// Only a failed summary write is returned; chart and delivery problems are logged.
func Publish(s Summary, opts Options) (Paths, error) {
	paths := artifactPaths(opts.Dir, s)
	if err := fs.SaveJSON(paths.Summary, s); err != nil {
		return paths, err
	}

	if err := RenderChart(s, paths.Chart); err != nil {
		logging.LogWarn("Failed to render report chart", zap.Error(err))
		paths.Chart = ""
	}

	if opts.Notifier == nil {
		logging.LogDebug("Telegram report skipped: not configured")
		return paths, nil
	}
	if err := opts.Notifier.Notify(s, paths.Chart); err != nil {
		logging.LogError("Failed to deliver report", zap.Error(err))
	}
	return paths, nil
}

// NotifierFromConfig builds a notifier, returning nil when Telegram is not configured.
func NotifierFromConfig(token, chatID string) *Notifier {
	n, err := NewNotifier(token, chatID)
	if errors.Is(err, ErrNotConfigured) {
		return nil
	}
	if err != nil {
		logging.LogWarn("Telegram notifier disabled", zap.Error(err))
		return nil
	}
	return n
}
