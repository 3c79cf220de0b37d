// Package merge implements the control-flow confluence step of the
// analysis: combining a block's several predecessors' per-allocation state
// into the state the block itself starts with. An allocation's
// materializations union cheaply (more instructions to reconstruct it costs
// nothing extra at worst), but its attribute-write state does not: an
// attribute written on every incoming path is different from one written on
// only some of them, and the three inconsistent cases — partial writes, an
// allocation present on only some incoming paths, or a materialization
// active on only some paths — all force the allocation
// Irreplaceable rather than risk reading an attribute that was never
// written on every path.
package merge
