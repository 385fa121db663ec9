package logging

import (
	"io"
	"log/syslog"
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/clustertemplates/internal/config"
)

// NewLogger creates a structured zerolog.Logger writing JSON to stdout with
// the service name attached and the level taken from the config.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg)
}

// NewSyslogLogger returns a logger whose records go to the local syslog
// daemon under cfg.SyslogTag. Each event becomes one syslog record at the
// matching severity. If syslog cannot be reached the logger falls back to
// stderr and the dial error is returned alongside it.
func NewSyslogLogger(cfg *config.Config) (zerolog.Logger, error) {
	w, err := syslog.New(syslog.LOG_DEBUG|syslog.LOG_USER, cfg.SyslogTag)
	if err != nil {
		return newLogger(os.Stderr, cfg).Level(zerolog.DebugLevel), err
	}
	return newLogger(zerolog.SyslogLevelWriter(w), cfg).Level(zerolog.DebugLevel), nil
}

func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
