package log

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToStd(t *testing.T) {
	assert.Equal(t, Std(), FromContext(context.Background()))
}

func TestIntoContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).WithValues("requestID", "r-1")

	ctx := IntoContext(context.Background(), l)
	FromContext(ctx).Info("lookup started", "code", "w9mb")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "lookup started", entry.Message)
	assert.Equal(t, "r-1", entry.ContextMap()["requestID"])
	assert.Equal(t, "w9mb", entry.ContextMap()["code"])
}

func TestFromContextUsesLogrSink(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := logr.NewContext(context.Background(), FromZap(zap.New(core)).Logr())

	FromContext(ctx).Warn("busy")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}

func TestSetLevelRejectsGarbage(t *testing.T) {
	assert.Error(t, SetLevel("loud"))
	assert.NoError(t, SetLevel("debug"))
}
