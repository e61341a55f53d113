package clilog

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func newTestLogger(min Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{min: min, out: &buf}, &buf
}

func TestInfoAlwaysEmits(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)
	l.Info("hello %s", "world")
	if got := buf.String(); !strings.Contains(got, "[info] hello world") {
		t.Fatalf("got %q", got)
	}
}

func TestDebugSuppressedBelowDebugLevel(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)
	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be suppressed at LevelInfo, got %q", buf.String())
	}
}

func TestDebugEmitsAtDebugLevel(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)
	l.Debug("visible %d", 1)
	if got := buf.String(); !strings.Contains(got, "[debug] visible 1") {
		t.Fatalf("got %q", got)
	}
}

func TestErrorAlwaysEmitsRegardlessOfLevel(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)
	l.Error("boom")
	if got := buf.String(); !strings.Contains(got, "[error] boom") {
		t.Fatalf("got %q", got)
	}
}

func TestFromEnvDefaultsToInfo(t *testing.T) {
	os.Unsetenv("CODEHEM_DEBUG")
	l := FromEnv()
	if l.min != LevelInfo {
		t.Fatalf("expected LevelInfo by default, got %v", l.min)
	}
}

func TestFromEnvRaisesToDebug(t *testing.T) {
	os.Setenv("CODEHEM_DEBUG", "1")
	defer os.Unsetenv("CODEHEM_DEBUG")
	l := FromEnv()
	if l.min != LevelDebug {
		t.Fatalf("expected LevelDebug when CODEHEM_DEBUG=1, got %v", l.min)
	}
}
