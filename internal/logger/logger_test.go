package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"verbose":  zapcore.InfoLevel,
		"":         zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	core, logs := observer.New(toZapLevel(InfoLevel))
	log := FromCore(core)

	log.Debugw("poll_response_body", "bytes", 812)
	log.Infow("poll_ok", "aqi", 42)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	if msg := logs.All()[0].Message; msg != "poll_ok" {
		t.Fatalf("unexpected entry %q", msg)
	}
}

func TestWith_AddsFieldsAndToleratesNil(t *testing.T) {
	var nilLog *Logger
	if nilLog.With("component", "x") != nil {
		t.Fatalf("expected nil child of nil logger")
	}

	core, logs := observer.New(zapcore.DebugLevel)
	child := FromCore(core).With("component", "poller")
	child.Infow("tick")

	entry := logs.All()[0]
	if entry.ContextMap()["component"] != "poller" {
		t.Fatalf("component field missing: %v", entry.ContextMap())
	}
}
