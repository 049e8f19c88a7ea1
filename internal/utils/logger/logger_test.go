package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOperation_AddsCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	log, id := Operation(zap.New(core), "build")
	log.Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "build", fields["operation"])
	assert.Equal(t, id, fields["correlation_id"])
	assert.Len(t, id, 36)

	_, other := Operation(zap.New(core), "build")
	assert.NotEqual(t, id, other)
}

func TestNew_WritesToRotatedFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "test.log")
	cfg.Development = true

	l, err := New(cfg)
	require.NoError(t, err)
	l.WithComponent("router").Debug("written")
	_ = l.Sync()
	assert.FileExists(t, cfg.LogFile)
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	l.WithComponent("egress").Info("ready")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "egress", logs.All()[0].ContextMap()["component"])
}
