// Command peaopt parses a textual SSA program (package core/asmtext), runs
// the partial escape analysis pass over it, and prints either the rewritten
// program or a Graphviz dump of its control-flow and escape-dependency
// structure. It exists as a development harness: a way to exercise pea.Run
// end to end without a real host VM wired up.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/core/asmtext"
	"github.com/vmkit/pea/observ"
	"github.com/vmkit/pea/pea"
	"github.com/vmkit/pea/peaconf"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inputPath string, dumpMode string, verbose bool) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("peaopt: %w", err)
	}
	defer f.Close()

	om := core.NewMemObjectModel()
	regs := core.NewMemRegisterAllocator(0)
	g, err := asmtext.Parse(f, om, regs, core.NewMemFactStore(), core.NewMemDeoptUsageSink(), core.NewMemSlotInterner())
	if err != nil {
		return fmt.Errorf("peaopt: parsing %s: %w", inputPath, err)
	}

	var opts []peaconf.Option
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("peaopt: building logger: %w", err)
		}
		opts = append(opts, peaconf.WithLogging(logger))
	}
	if dumpMode != "" {
		opts = append(opts, peaconf.WithDump(os.Stdout))
	}

	result, err := pea.Run(g, opts...)
	if err != nil {
		return fmt.Errorf("peaopt: %w", err)
	}

	fmt.Fprintf(os.Stderr, "tracked=%d replaced=%d irreplaceable=%d bailout=%q\n",
		result.Tracked, result.Replaced, result.Irreplaceable, result.Bailout)

	switch dumpMode {
	case "":
		return asmtext.Print(os.Stdout, g)
	case "cfg":
		return observ.DumpCFG(os.Stdout, g)
	case "escape":
		return observ.DumpEscapeDAG(os.Stdout, g)
	default:
		return fmt.Errorf("peaopt: unknown --dump mode %q (want cfg or escape)", dumpMode)
	}
}
