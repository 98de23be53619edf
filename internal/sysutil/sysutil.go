// Package sysutil holds process-level helpers shared by the binaries: the
// zerolog setup and small string utilities.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tbourn/go-lead-backend/internal/config"
)

// SetLogLevel configures the global zerolog level. Supported values
// (case-insensitive): debug, info, warn, error, fatal, panic. Anything else
// means info.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// LogWriter builds the log sink: stdout (console-formatted when Pretty) plus
// a size-rotated file when File is set. The returned closer releases the
// file and is never nil.
func LogWriter(cfg config.LogConfig, stdout io.Writer) (io.Writer, io.Closer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if cfg.Pretty {
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339}
	}
	if cfg.File == "" {
		return stdout, nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(stdout, file), file
}

// InitLogger installs the global zerolog logger for cfg and returns a
// closer for the file sink.
func InitLogger(cfg config.LogConfig, service string) io.Closer {
	SetLogLevel(cfg.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w, closer := LogWriter(cfg, os.Stdout)
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", service).Logger()
	zerolog.DefaultContextLogger = &log.Logger
	return closer
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
