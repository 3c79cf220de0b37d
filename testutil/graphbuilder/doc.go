// Package graphbuilder assembles small core.Graph fixtures for tests
// without the boilerplate of hand-writing every *core.Instruction literal
// and bb.AddInstr call. It mirrors the teacher's builder package: one
// orchestrator (BuildGraph) that resolves functional options into a config
// and then applies a list of Constructor closures in order, each free to
// fail with a sentinel error rather than panic.
//
// Unlike the teacher's topology factories (Cycle, Path, Star, ...), a PEA
// fixture's shape is never mechanical — every test wants a specific
// sequence of fastcreate/bindattr/getattr/guard instructions across a
// specific block layout. So graphbuilder's factories are lower-level:
// Block declares one named, edge-wired basic block, and Instr appends one
// named-register instruction to it. Block names and register names are
// resolved across the whole BuildGraph call, the same way asmtext resolves
// "%rN" and block names across a whole program.
package graphbuilder
