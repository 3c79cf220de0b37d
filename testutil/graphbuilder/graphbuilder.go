package graphbuilder

import (
	"errors"
	"fmt"

	"github.com/vmkit/pea/core"
)

var (
	// ErrNilObjectModel is returned by BuildGraph when om is nil; every
	// fixture needs at least a type table to track anything against.
	ErrNilObjectModel = errors.New("graphbuilder: nil object model")
	// ErrNilRegisterAllocator is returned by BuildGraph when regAlloc is nil.
	ErrNilRegisterAllocator = errors.New("graphbuilder: nil register allocator")
	// ErrNilConstructor is returned when a nil Constructor is passed to
	// BuildGraph — a programmer error in the calling test, not a
	// malformed fixture.
	ErrNilConstructor = errors.New("graphbuilder: nil constructor")
	// ErrDuplicateBlock is returned by Block when name was already declared
	// earlier in the same BuildGraph call.
	ErrDuplicateBlock = errors.New("graphbuilder: duplicate block name")
	// ErrUnknownBlock is returned when an edge or fallthrough names a block
	// that was never declared via Block.
	ErrUnknownBlock = errors.New("graphbuilder: unknown block name")
	// ErrUnknownRegister is returned when Use names a register that no
	// earlier Instr on this or a prior block minted through Scope.Reg.
	ErrUnknownRegister = errors.New("graphbuilder: unknown register name")
)

// config holds the ambient services a fixture may opt into. Only
// ObjectModel and RegisterAllocator are mandatory; the rest default to nil,
// matching core.NewGraph's own contract.
type config struct {
	facts       core.FactStore
	deoptUsages core.DeoptUsageSink
	interner    core.SlotInterner
}

// Option configures ambient services threaded into the built Graph.
type Option func(*config)

// WithFacts wires the graph's canonical SSA fact store.
func WithFacts(f core.FactStore) Option { return func(c *config) { c.facts = f } }

// WithDeoptUsages wires the graph's deopt-usage sink.
func WithDeoptUsages(d core.DeoptUsageSink) Option { return func(c *config) { c.deoptUsages = d } }

// WithInterner wires the graph's spesh-slot interner.
func WithInterner(i core.SlotInterner) Option { return func(c *config) { c.interner = i } }

// Scope is the shared, mutable state every Constructor closure resolves
// names against: declared blocks (for edges) and declared registers (for
// operand reuse across instructions and blocks), exactly as asmtext.Parse
// resolves "%rN" and block names across an entire program.
type Scope struct {
	alloc  core.RegisterAllocator
	blocks map[string]*core.BasicBlock
	regs   map[string]core.Operand
	// edges holds each Block's (from, to) successor names until every
	// constructor has run, so a Block may name a block declared after it.
	edges [][2]string
}

// Reg returns the operand named name, minting a fresh register of kind if
// name has not been defined yet. Calling Reg with a second, different kind
// for the same name does not change its already-minted kind — the first
// call wins, matching a real SSA register's kind being fixed at definition.
func (s *Scope) Reg(name string, kind core.RegKind) core.Operand {
	if op, ok := s.regs[name]; ok {
		return op
	}
	op := s.alloc.NewRegister(kind)
	s.regs[name] = op
	return op
}

// Use looks up an already-defined register by name, without minting one.
func (s *Scope) Use(name string) (core.Operand, error) {
	op, ok := s.regs[name]
	if !ok {
		return core.Operand{}, fmt.Errorf("register %q: %w", name, ErrUnknownRegister)
	}
	return op, nil
}

// Constructor mutates the graph under construction. Constructors run in
// call order and must not panic; prefer the sentinel errors above so
// callers can errors.Is against a specific failure.
type Constructor func(g *core.Graph, s *Scope) error

// BuildGraph constructs a new core.Graph wired to om and regAlloc (plus any
// ambient services from opts) and applies every constructor in order,
// wrapping the first failing constructor's error once at this boundary —
// the same single-orchestrator shape as the teacher's builder.BuildGraph.
func BuildGraph(om core.ObjectModel, regAlloc core.RegisterAllocator, opts []Option, cons ...Constructor) (*core.Graph, error) {
	if om == nil {
		return nil, ErrNilObjectModel
	}
	if regAlloc == nil {
		return nil, ErrNilRegisterAllocator
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	g := core.NewGraph(om, regAlloc, cfg.facts, cfg.deoptUsages, cfg.interner)
	s := &Scope{alloc: regAlloc, blocks: make(map[string]*core.BasicBlock), regs: make(map[string]core.Operand)}

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildGraph: constructor %d: %w", i, ErrNilConstructor)
		}
		if err := fn(g, s); err != nil {
			return nil, fmt.Errorf("BuildGraph: %w", err)
		}
	}
	for _, e := range s.edges {
		succ, ok := s.blocks[e[1]]
		if !ok {
			return nil, fmt.Errorf("BuildGraph: block %q: successor %q: %w", e[0], e[1], ErrUnknownBlock)
		}
		core.AddEdge(s.blocks[e[0]], succ)
	}
	return g, nil
}

// Block declares a new basic block named name, wired with an edge to each
// block named in succs (resolved by BuildGraph once every constructor has
// run, so a successor may be declared before or after this block, like
// asmtext's explicit "->" edges), then runs fill against it to append
// instructions. fill may
// be nil for an empty block; an *Instr's Append propagates a real error
// (an undefined register use) rather than panicking.
func Block(name string, succs []string, fill func(b *core.BasicBlock, s *Scope) error) Constructor {
	return func(g *core.Graph, s *Scope) error {
		if _, dup := s.blocks[name]; dup {
			return fmt.Errorf("block %q: %w", name, ErrDuplicateBlock)
		}
		bb := g.AddBlock()
		s.blocks[name] = bb

		for _, succName := range succs {
			s.edges = append(s.edges, [2]string{name, succName})
		}
		if fill == nil {
			return nil
		}
		if err := fill(bb, s); err != nil {
			return fmt.Errorf("block %q: %w", name, err)
		}
		return nil
	}
}

// Fallthrough wires every block named in order with an edge to the next,
// for tests that want straight-line fixtures without repeating successor
// lists on every Block call.
func Fallthrough(order ...string) Constructor {
	return func(g *core.Graph, s *Scope) error {
		for i := 0; i+1 < len(order); i++ {
			from, ok := s.blocks[order[i]]
			if !ok {
				return fmt.Errorf("fallthrough: %w: %q", ErrUnknownBlock, order[i])
			}
			to, ok := s.blocks[order[i+1]]
			if !ok {
				return fmt.Errorf("fallthrough: %w: %q", ErrUnknownBlock, order[i+1])
			}
			core.AddEdge(from, to)
		}
		return nil
	}
}
