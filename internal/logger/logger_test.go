package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestWrap_RoutesToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.Debug("folder created", String("id", "f1"))
	log.Warn("target missing", Strings("bookmarks", []string{"b1", "b2"}), Int("count", 2))
	log.Error("store failed", Error(errors.New("boom")))
	log.Infof("listening on %s", "127.0.0.1:8417")

	entries := logs.AllUntimed()
	assert.Assert(t, is.Len(entries, 4))
	assert.Check(t, is.Equal(entries[0].Level, zapcore.DebugLevel))
	assert.Check(t, is.Equal(entries[0].ContextMap()["id"], "f1"))
	assert.Check(t, is.Equal(entries[1].ContextMap()["count"], int64(2)))
	assert.Check(t, is.Equal(entries[2].ContextMap()["error"], "boom"))
	assert.Check(t, is.Equal(entries[3].Message, "listening on 127.0.0.1:8417"))
	assert.Check(t, is.Equal(entries[3].Level, zapcore.InfoLevel))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{in: "debug", want: zapcore.DebugLevel, ok: true},
		{in: "warn", want: zapcore.WarnLevel, ok: true},
		{in: "error", want: zapcore.ErrorLevel, ok: true},
		{in: "loud", want: zapcore.InfoLevel, ok: false},
	}
	for _, tt := range tests {
		got, ok := parseLevel(tt.in)
		assert.Check(t, is.Equal(got, tt.want), tt.in)
		assert.Check(t, is.Equal(ok, tt.ok), tt.in)
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("discarded")
	assert.NilError(t, log.Sync())
}
