// Package materialize decides when a scalar-replaced allocation still needs
// a real heap object reconstructed for one particular use, and where in the
// block that reconstruction must be inserted.
//
// An allocation can remain replaceable overall while still needing to be
// materialized at a specific consumer: passed to an unknown call, returned,
// or simply read back by a later instruction that was never itself
// tracked. Each such use gets (or joins)
// a MaterializationHandle, queued for package transform to apply once
// analysis finishes.
package materialize
