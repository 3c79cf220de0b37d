// Package transform holds the planned rewrites the analyzer (package
// analyze) produces and the single apply-site switch that turns a finished
// Plan into actual mutations of a core.Graph.
//
// Every rewrite the pass can make — deleting an allocating instruction,
// turning an attribute access into a plain register move, decomposing boxed
// big-integer arithmetic, materializing a real object back onto the heap —
// is represented as one Transform value tagged with a Kind. Planning and
// applying are split deliberately: the analyzer computes every rewrite it
// wants while the graph is still only partially understood (an allocation
// can still flip Irreplaceable after a transform targeting it was queued),
// so Apply re-checks Alloc.Irreplaceable at the only point that matters —
// application — rather than trusting the planner's snapshot.
package transform
