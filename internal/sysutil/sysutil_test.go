package sysutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-lead-backend/internal/config"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestLogWriter_StdoutOnly(t *testing.T) {
	var buf bytes.Buffer
	w, closer := LogWriter(config.LogConfig{}, &buf)
	logger := zerolog.New(w)
	logger.Info().Msg("lead stored")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !strings.Contains(buf.String(), `"message":"lead stored"`) {
		t.Fatalf("expected JSON line, got %q", buf.String())
	}
}

func TestLogWriter_PrettyConsole(t *testing.T) {
	var buf bytes.Buffer
	w, _ := LogWriter(config.LogConfig{Pretty: true}, &buf)
	logger := zerolog.New(w)
	logger.Info().Msg("pretty")
	if strings.Contains(buf.String(), `"message"`) || !strings.Contains(buf.String(), "pretty") {
		t.Fatalf("expected console format, got %q", buf.String())
	}
}

func TestLogWriter_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.log")
	var buf bytes.Buffer
	w, closer := LogWriter(config.LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 2}, &buf)
	logger := zerolog.New(w)
	logger.Warn().Msg("to both")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Fatalf("expected line in file and stdout: file=%q stdout=%q", data, buf.String())
	}
}

func TestInitLogger(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.DefaultContextLogger = nil
	})

	closer := InitLogger(config.LogConfig{Level: "warn"}, "go-lead-backend")
	defer closer.Close()
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("level not applied")
	}
	if zerolog.DefaultContextLogger == nil {
		t.Fatalf("context default logger not set")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("no args -> %q", got)
	}
	if got := FirstNonEmpty(" ", "\t"); got != "" {
		t.Fatalf("blanks -> %q", got)
	}
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("got %q", got)
	}
}
