package asmtext

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vmkit/pea/core"
)

// ErrSyntax wraps every malformed-input error Parse returns, so callers can
// test for "this text did not parse" with errors.Is without matching a
// specific message.
var ErrSyntax = errors.New("asmtext: syntax error")

// Parse reads a textual program and builds a Graph wired to the given
// external services. om and regAlloc must be non-nil, matching core.
// NewGraph's own contract; facts, deoptUsages and interner may be nil.
func Parse(r io.Reader, om core.ObjectModel, regAlloc core.RegisterAllocator, facts core.FactStore, deoptUsages core.DeoptUsageSink, interner core.SlotInterner) (*core.Graph, error) {
	g := core.NewGraph(om, regAlloc, facts, deoptUsages, interner)
	p := &parser{g: g, om: om, regAlloc: regAlloc, regs: make(map[string]core.Operand), blockNames: make(map[string]*core.BasicBlock)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	var pendingEdges []pendingEdge
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "type ") {
			if err := p.parseType(line); err != nil {
				return nil, fmt.Errorf("asmtext: line %d: %w", lineNo, err)
			}
			continue
		}
		if strings.HasPrefix(line, "block ") {
			name, succNames, err := parseBlockHeader(line)
			if err != nil {
				return nil, fmt.Errorf("asmtext: line %d: %w", lineNo, err)
			}
			bb := g.AddBlock()
			p.blockNames[name] = bb
			p.order = append(p.order, bb)
			p.cur = bb
			if len(succNames) > 0 {
				pendingEdges = append(pendingEdges, pendingEdge{from: bb, to: succNames})
			} else {
				p.fallthroughFrom = append(p.fallthroughFrom, bb)
			}
			continue
		}
		if p.cur == nil {
			return nil, fmt.Errorf("asmtext: line %d: instruction before any block header: %w", lineNo, ErrSyntax)
		}
		if err := p.parseInstr(line); err != nil {
			return nil, fmt.Errorf("asmtext: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, e := range pendingEdges {
		for _, name := range e.to {
			succ, ok := p.blockNames[name]
			if !ok {
				return nil, fmt.Errorf("asmtext: successor block %q not defined: %w", name, ErrSyntax)
			}
			core.AddEdge(e.from, succ)
		}
	}
	for _, bb := range p.fallthroughFrom {
		idx := indexOf(p.order, bb)
		if idx < 0 || idx+1 >= len(p.order) {
			continue
		}
		core.AddEdge(bb, p.order[idx+1])
	}

	return g, nil
}

type pendingEdge struct {
	from *core.BasicBlock
	to   []string
}

// typeRegisterer is implemented by *core.MemObjectModel. "type" declaration
// lines are only meaningful against that reference object model — a
// production integration wires its own type tables and never feeds
// declarations through text at all.
type typeRegisterer interface {
	RegisterType(stable uint32, t *core.MemStableType) *core.MemObjectModel
}

type parser struct {
	g               *core.Graph
	om              core.ObjectModel
	regAlloc        core.RegisterAllocator
	regs            map[string]core.Operand
	blockNames      map[string]*core.BasicBlock
	order           []*core.BasicBlock
	cur             *core.BasicBlock
	fallthroughFrom []*core.BasicBlock
}

func indexOf(bs []*core.BasicBlock, target *core.BasicBlock) int {
	for i, b := range bs {
		if b == target {
			return i
		}
	}
	return -1
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}

func parseBlockHeader(line string) (name string, succs []string, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", nil, fmt.Errorf("malformed block header %q: %w", line, ErrSyntax)
	}
	name = fields[1]
	rest := fields[2:]
	if len(rest) > 0 {
		if rest[0] != "->" {
			return "", nil, fmt.Errorf("malformed block header %q: %w", line, ErrSyntax)
		}
		succs = rest[1:]
	}
	return name, succs, nil
}

// parseType handles a "type <id> [opaque] [attrs=kind,kind,...] [bigint=N]"
// declaration, registering a MemStableType against p.om. Declarations only
// work against the in-memory reference object model; a real host
// integration has no use for this line kind at all.
func (p *parser) parseType(line string) error {
	reg, ok := p.om.(typeRegisterer)
	if !ok {
		return fmt.Errorf("type declarations require the in-memory reference object model: %w", ErrSyntax)
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("malformed type declaration %q: %w", line, ErrSyntax)
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return fmt.Errorf("bad type id %q: %w", fields[1], ErrSyntax)
	}

	t := &core.MemStableType{BigIntAttrIndex: -1}
	for _, f := range fields[2:] {
		switch {
		case f == "opaque":
			t.Opaque = true
		case strings.HasPrefix(f, "attrs="):
			var offset int64
			for _, k := range strings.Split(strings.TrimPrefix(f, "attrs="), ",") {
				kind, ok := parseKind(k)
				if !ok {
					return fmt.Errorf("unknown attribute kind %q in type %d: %w", k, id, ErrSyntax)
				}
				t.Attrs = append(t.Attrs, core.AttrLayout{Kind: kind, Offset: offset})
				offset += 8
			}
		case strings.HasPrefix(f, "bigint="):
			n, err := strconv.Atoi(strings.TrimPrefix(f, "bigint="))
			if err != nil {
				return fmt.Errorf("bad bigint= value in type %d: %w", id, ErrSyntax)
			}
			t.BigIntAttrIndex = n
		default:
			return fmt.Errorf("unknown type attribute %q: %w", f, ErrSyntax)
		}
	}

	reg.RegisterType(uint32(id), t)
	return nil
}

func parseKind(s string) (core.RegKind, bool) {
	switch s {
	case "obj":
		return core.RegKindObj, true
	case "int":
		return core.RegKindInt, true
	case "float":
		return core.RegKindFloat, true
	case "str":
		return core.RegKindStr, true
	case "bigint":
		return core.RegKindBigInt, true
	default:
		return core.RegKindInvalid, false
	}
}

// parseInstr parses one instruction line and appends it to p.cur.
func (p *parser) parseInstr(line string) error {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return fmt.Errorf("empty instruction: %w", ErrSyntax)
	}

	var dest core.Operand
	hasDest := false
	if len(fields) >= 2 && fields[1] == "=" {
		name, kindStr, ok := strings.Cut(fields[0], ":")
		if !ok {
			return fmt.Errorf("malformed destination %q: %w", fields[0], ErrSyntax)
		}
		kind, ok := parseKind(kindStr)
		if !ok {
			return fmt.Errorf("unknown register kind in %q: %w", fields[0], ErrSyntax)
		}
		op := p.regAlloc.NewRegister(kind)
		p.regs[name] = op
		dest = op
		hasDest = true
		fields = fields[2:]
	}
	if len(fields) == 0 {
		return fmt.Errorf("missing opcode: %w", ErrSyntax)
	}

	ins := &core.Instruction{Op: core.Opcode(fields[0])}
	if hasDest {
		ins.Result = dest
	}

	for _, f := range fields[1:] {
		if k, v, ok := strings.Cut(f, "="); ok {
			if err := applyAttr(ins, k, v); err != nil {
				return err
			}
			continue
		}
		if name, kindStr, hasKind := strings.Cut(f, ":"); hasKind {
			if _, defined := p.regs[name]; !defined {
				kind, ok := parseKind(kindStr)
				if !ok {
					return fmt.Errorf("unknown register kind in %q: %w", f, ErrSyntax)
				}
				p.regs[name] = p.regAlloc.NewRegister(kind)
			}
			f = name
		}
		op, ok := p.regs[f]
		if !ok {
			return fmt.Errorf("use of undefined register %q: %w", f, ErrSyntax)
		}
		ins.Operands = append(ins.Operands, op)
	}

	p.cur.AddInstr(ins)
	return nil
}

func applyAttr(ins *core.Instruction, key, val string) error {
	switch key {
	case "type":
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return fmt.Errorf("bad type= value %q: %w", val, ErrSyntax)
		}
		ins.StableType = uint32(n)
	case "attr":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("bad attr= value %q: %w", val, ErrSyntax)
		}
		ins.AttrIndex = n
	case "deopt":
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return fmt.Errorf("bad deopt= value %q: %w", val, ErrSyntax)
		}
		ins.MayDeopt = true
		ins.Deopt = core.DeoptIndex{Index: uint32(n)}
	case "comment":
		ins.Comment = val
	default:
		return fmt.Errorf("unknown attribute %q: %w", key, ErrSyntax)
	}
	return nil
}

// Print renders g back to the textual form Parse accepts, blocks in g.
// Blocks order, one instruction per line.
func Print(w io.Writer, g *core.Graph) error {
	bw := bufio.NewWriter(w)
	for _, b := range g.Blocks {
		succNames := make([]string, 0, len(b.Succs))
		for _, s := range b.Succs {
			succNames = append(succNames, blockName(s.ID))
		}
		sort.Strings(succNames)
		if len(succNames) > 0 {
			fmt.Fprintf(bw, "block %s -> %s\n", blockName(b.ID), strings.Join(succNames, " "))
		} else {
			fmt.Fprintf(bw, "block %s\n", blockName(b.ID))
		}
		for _, ins := range b.Instrs {
			if ins.Deleted() {
				continue
			}
			fmt.Fprintf(bw, "  %s\n", printInstr(ins))
		}
	}
	return bw.Flush()
}

func blockName(id core.BlockID) string {
	return fmt.Sprintf("bb%d", id)
}

func printOperand(o core.Operand) string {
	return fmt.Sprintf("%%r%d", o.Reg)
}

func printInstr(ins *core.Instruction) string {
	var sb strings.Builder
	if ins.Result.IsValid() {
		fmt.Fprintf(&sb, "%s:%s = ", printOperand(ins.Result), ins.Result.Kind)
	}
	sb.WriteString(string(ins.Op))
	for _, o := range ins.Operands {
		sb.WriteString(" ")
		sb.WriteString(printOperand(o))
	}
	if ins.StableType != 0 {
		fmt.Fprintf(&sb, " type=%d", ins.StableType)
	}
	_, bindOp := core.IsBindAttrOp(ins.Op)
	_, getOp := core.IsGetAttrOp(ins.Op)
	vivifyOp := ins.Op == core.OpGetAttrVivifyType || ins.Op == core.OpGetAttrVivifyConcrete
	if ins.AttrIndex != 0 || bindOp || getOp || vivifyOp {
		fmt.Fprintf(&sb, " attr=%d", ins.AttrIndex)
	}
	if ins.MayDeopt {
		fmt.Fprintf(&sb, " deopt=%d", ins.Deopt.Index)
	}
	if ins.Comment != "" {
		fmt.Fprintf(&sb, " comment=%s", ins.Comment)
	}
	return sb.String()
}
