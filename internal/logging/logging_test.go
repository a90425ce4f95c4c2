package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		debug bool
		want  zapcore.Level
	}{
		{true, zapcore.DebugLevel},
		{false, zapcore.InfoLevel},
	}
	for _, c := range cases {
		l, err := New(c.debug)
		if err != nil {
			t.Fatalf("New(%v) error: %v", c.debug, err)
		}
		if got := l.Level(); got != c.want {
			t.Errorf("New(%v).Level() = %v, want %v", c.debug, got, c.want)
		}
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Infow("discarded", "key", "value")
	if l.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Nop logger should not enable any level")
	}
}
