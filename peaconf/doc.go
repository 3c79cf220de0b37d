// Package peaconf holds the functional options that configure one pea.Run
// invocation: observability knobs (logging, metrics, CFG dumping) and
// tunables for the big-integer re-boxing cache. Options resolve into an
// immutable Config; later options override earlier ones, matching the
// functional-options style used elsewhere in this codebase.
package peaconf
