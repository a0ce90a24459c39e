package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/paygate/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	green  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	pink   = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	red    = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	purple = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

var levelBadges = map[log.Level]struct {
	icon  string
	color lipgloss.AdaptiveColor
}{
	log.ErrorLevel: {"❌", red},
	log.WarnLevel:  {"⚠️", pink},
	log.InfoLevel:  {"ℹ️", green},
	log.DebugLevel: {"🐛", purple},
}

// Attribute keys that get their own color. Values are rendered bold.
var keyColors = map[string]lipgloss.AdaptiveColor{
	"error":           red,
	"order_id":        green,
	"capture_id":      green,
	"idempotency_key": pink,
	"request_id":      pink,
	"op":              purple,
	"component":       green,
	"prefix":          purple,
	"caller":          purple,
	"time":            purple,
}

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
	"text":   log.TextFormatter,
}

// SetupLogger builds the process logger and installs it as the slog default.
func SetupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05"}
	}
	formatter, ok := formatters[cfg.Format]
	if !ok {
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	for level, badge := range levelBadges {
		s.Levels[level] = lipgloss.NewStyle().
			SetString(badge.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(badge.color)
	}
	for key, color := range keyColors {
		s.Keys[key] = lipgloss.NewStyle().Foreground(color)
		s.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return s
}
