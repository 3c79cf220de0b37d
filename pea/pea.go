package pea

import (
	"github.com/vmkit/pea/analyze"
	"github.com/vmkit/pea/bigint"
	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/deopt"
	"github.com/vmkit/pea/observ"
	"github.com/vmkit/pea/peaconf"
	"github.com/vmkit/pea/transform"
)

// Bailout names why a run ended up less complete than "every tracked
// allocation stayed replaceable" — never a Go error, since none of these are
// failures: they are the pass correctly recognizing a case it must give up
// on for soundness. BailoutNone means the run completed with no diagnostic
// ever forcing a give-up (individual allocations may still have turned
// Irreplaceable for ordinary reasons; Result.Irreplaceable reports that
// count regardless of Bailout).
type Bailout string

const (
	BailoutNone                              Bailout = ""
	BailoutBackEdge                          Bailout = "back-edge"
	BailoutInconsistentWrite                 Bailout = "inconsistent-write"
	BailoutPartialVisibility                 Bailout = "partial-visibility"
	BailoutMissingTypeInfo                   Bailout = "missing-type-info"
	BailoutUnresolvableBigIntOffset          Bailout = "unresolvable-bigint-offset"
	BailoutUnrecognizedStorageKind           Bailout = "unrecognized-storage-kind"
	BailoutPartialMaterializationAcrossMerge Bailout = "partial-materialization-across-merge"
)

func bailoutFromReason(reason string) Bailout {
	switch reason {
	case "inconsistent-write":
		return BailoutInconsistentWrite
	case "partial-visibility":
		return BailoutPartialVisibility
	case "missing-type-info":
		return BailoutMissingTypeInfo
	case "unresolvable-bigint-offset":
		return BailoutUnresolvableBigIntOffset
	case "unrecognized-storage-kind":
		return BailoutUnrecognizedStorageKind
	case "partial-materialization-across-merge":
		return BailoutPartialMaterializationAcrossMerge
	default:
		return BailoutNone
	}
}

// Result is everything one call to Run produced.
type Result struct {
	// Tracked is how many allocations entered tracking at all.
	Tracked int
	// Replaced is how many of those stayed replaceable through to the end
	// of the run and were fully scalar-replaced.
	Replaced int
	// Irreplaceable is how many ended the run needing a real object.
	Irreplaceable int

	// Bailout names the first diagnostic (in analysis order) that forced
	// any allocation onto Irreplaceable, or BailoutBackEdge if the whole
	// run aborted before tracking a single allocation. BailoutNone if
	// neither ever happened.
	Bailout Bailout

	// Deopt is the finished deopt side table. It is never nil; after a
	// back-edge bailout it is empty.
	Deopt *deopt.Bookkeeper
}

// Run performs one complete partial-escape-analysis-and-replace pass over
// g: analysis, then (unless the graph has a back edge) applying the
// resulting plan directly to g's basic blocks. g is mutated in place.
//
// Run returns a non-nil error only when the big-integer cache cannot be
// built or writing a requested dump fails; every analysis-time outcome,
// however unfavorable, is reported through Result instead.
func Run(g *core.Graph, opts ...peaconf.Option) (*Result, error) {
	cfg := peaconf.NewConfig(opts...)
	logger := observ.NewLogger(cfg.Logger)

	var metrics *observ.Metrics
	if cfg.MetricsRegisterer != nil {
		metrics = observ.NewMetrics(cfg.MetricsRegisterer)
	}

	cache, err := bigint.NewCache(cfg.BigIntCacheSize)
	if err != nil {
		return nil, err
	}

	an := analyze.NewAnalyzer(g, cache)
	analysis := an.Run()

	result := &Result{Deopt: analysis.Deopt}

	if analysis.BackEdge {
		logger.BackEdge(core.BlockID(0))
		if metrics != nil {
			metrics.BackEdgeBailouts.Inc()
		}
		result.Bailout = BailoutBackEdge
		return result, nil
	}

	transform.Transformer{}.Apply(g, analysis.Plan, analysis.Deopt)

	result.Tracked = len(g.Allocations)
	for _, a := range g.Allocations {
		if a.Irreplaceable {
			result.Irreplaceable++
		} else {
			result.Replaced++
		}
	}

	for _, d := range analysis.Diagnostics {
		if d.Alloc != nil {
			logger.Irreplaceable(d.Alloc, d.Reason)
		}
		if result.Bailout == BailoutNone {
			result.Bailout = bailoutFromReason(d.Reason)
		}
	}
	logger.RunSummary(result.Tracked, result.Replaced, result.Irreplaceable)

	if metrics != nil {
		metrics.AllocationsTracked.Add(float64(result.Tracked))
		metrics.Replaced.Add(float64(result.Replaced))
		metrics.Irreplaceable.Add(float64(result.Irreplaceable))
		for _, ts := range analysis.Plan.ByBlock {
			for _, t := range ts {
				if t.Kind == transform.KindMaterialize {
					metrics.Materializations.Inc()
				}
			}
		}
	}

	if cfg.DumpWriter != nil {
		if err := observ.DumpCFG(cfg.DumpWriter, g); err != nil {
			return result, err
		}
		if err := observ.DumpEscapeDAG(cfg.DumpWriter, g); err != nil {
			return result, err
		}
	}

	return result, nil
}
