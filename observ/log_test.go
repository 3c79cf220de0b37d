package observ_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/observ"
)

func newObservedLogger() (observ.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return observ.NewLogger(zap.New(core)), logs
}

func TestLogger_NilLoggerIsNoop(t *testing.T) {
	l := observ.NewLogger(nil)
	require.NotPanics(t, func() {
		l.AllocationTracked(&core.Allocation{Index: 0}, core.BlockID(1))
	})
}

func TestLogger_AllocationTracked(t *testing.T) {
	l, logs := newObservedLogger()
	a := &core.Allocation{Index: 3, StableType: 7}
	l.AllocationTracked(a, core.BlockID(2))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "allocation tracked", entry.Message)
	require.Equal(t, int64(3), entry.ContextMap()["alloc"])
}

func TestLogger_Irreplaceable(t *testing.T) {
	l, logs := newObservedLogger()
	a := &core.Allocation{Index: 1}
	l.Irreplaceable(a, "inconsistent-write")

	entry := logs.All()[0]
	require.Equal(t, "allocation marked irreplaceable", entry.Message)
	require.Equal(t, "inconsistent-write", entry.ContextMap()["reason"])
}

func TestLogger_BackEdge(t *testing.T) {
	l, logs := newObservedLogger()
	l.BackEdge(core.BlockID(5))

	entry := logs.All()[0]
	require.Equal(t, "analysis aborted: back edge detected", entry.Message)
	require.Equal(t, zap.WarnLevel, entry.Level)
}

func TestLogger_RunSummary(t *testing.T) {
	l, logs := newObservedLogger()
	l.RunSummary(10, 7, 3)

	entry := logs.All()[0]
	require.Equal(t, int64(10), entry.ContextMap()["tracked"])
	require.Equal(t, int64(7), entry.ContextMap()["replaced"])
	require.Equal(t, int64(3), entry.ContextMap()["irreplaceable"])
}
