package observ

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vmkit/pea/core"
)

// Logger wraps a *zap.Logger with one named method per decision class the
// pass can make, so every call site logs a consistent, greppable field set
// instead of hand-building zap.Fields inline.
type Logger struct {
	z *zap.Logger
}

// NewLogger wraps z. A nil z is replaced with a no-op logger.
func NewLogger(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return Logger{z: z}
}

func allocField(a *core.Allocation) zapcore.Field {
	return zap.Int("alloc", a.Index)
}

// AllocationTracked logs that a candidate allocation started being tracked.
func (l Logger) AllocationTracked(a *core.Allocation, block core.BlockID) {
	l.z.Debug("allocation tracked", allocField(a), zap.Uint32("block", uint32(block)), zap.Uint32("stable_type", a.StableType))
}

// Irreplaceable logs that a was marked Irreplaceable, and why.
func (l Logger) Irreplaceable(a *core.Allocation, reason string) {
	l.z.Info("allocation marked irreplaceable", allocField(a), zap.String("reason", reason))
}

// Materialized logs that a materialization was queued for a in a given
// block.
func (l Logger) Materialized(a *core.Allocation, block core.BlockID) {
	l.z.Debug("materialization queued", allocField(a), zap.Uint32("block", uint32(block)))
}

// GuardEliminated logs that a guard's deopt path was proven unreachable.
func (l Logger) GuardEliminated(block core.BlockID, stableType uint32) {
	l.z.Debug("guard eliminated", zap.Uint32("block", uint32(block)), zap.Uint32("stable_type", stableType))
}

// BigIntDecomposed logs that a boxed big-integer op was rewritten to its
// unboxed form.
func (l Logger) BigIntDecomposed(op core.Opcode, unboxed core.Opcode) {
	l.z.Debug("bigint op decomposed", zap.String("boxed_op", string(op)), zap.String("unboxed_op", string(unboxed)))
}

// BackEdge logs that analysis aborted on a back edge (or self loop).
func (l Logger) BackEdge(block core.BlockID) {
	l.z.Warn("analysis aborted: back edge detected", zap.Uint32("block", uint32(block)))
}

// MergeInconsistency logs that a merge point found inconsistent state for
// an allocation.
func (l Logger) MergeInconsistency(a *core.Allocation, block core.BlockID, reason string) {
	l.z.Info("merge inconsistency", allocField(a), zap.Uint32("block", uint32(block)), zap.String("reason", reason))
}

// RunSummary logs the outcome of a completed run.
func (l Logger) RunSummary(tracked, replaced, irreplaceable int) {
	l.z.Info("pea run complete",
		zap.Int("tracked", tracked),
		zap.Int("replaced", replaced),
		zap.Int("irreplaceable", irreplaceable),
	)
}
