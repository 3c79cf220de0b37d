// Package deopt bookkeeps what a specialized frame needs to reconstruct at
// the moment it bails out back to the interpreter: which scalar-replaced
// allocations need a materialize-info record at a given deopt point, and
// which concrete registers must be kept live there regardless. The analyzer
// creates a Bookkeeper empty; the transformer fills it in as it applies
// KindAddDeoptPoint/KindAddDeoptUsage transforms; nothing is mutated once
// the pass has finished.
package deopt
