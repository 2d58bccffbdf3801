package cmd

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncCounter is a log sink that counts flushes.
type syncCounter struct {
	bytes.Buffer
	syncs atomic.Int32
}

func (s *syncCounter) Sync() error {
	s.syncs.Add(1)
	return nil
}

func TestExecuteFlushesLogOnFailure(t *testing.T) {
	testEnv(t)
	sink := &syncCounter{}
	orig := buildLogger
	buildLogger = func(bool) (*zap.Logger, error) {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		return zap.New(zapcore.NewCore(enc, sink, zap.DebugLevel)), nil
	}
	t.Cleanup(func() {
		buildLogger = orig
		logger = zap.NewNop()
	})

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"build"})

	if err := execute(); err == nil {
		t.Fatal("expected closing without a build to fail")
	}
	if sink.syncs.Load() == 0 {
		t.Error("logger was not synced after a failing command")
	}
	if !strings.Contains(sink.String(), "command start") {
		t.Errorf("expected the debug start line in the log, got %q", sink.String())
	}
}
