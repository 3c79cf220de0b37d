// Package alloc implements the Allocation Tracker: it decides which heap
// allocations seen during analysis are scalar-replacement candidates,
// records their type and attribute-register mapping, and floods the
// irreplaceable flag across the escape-dependency DAG when an allocation
// can no longer be replaced.
package alloc
