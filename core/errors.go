package core

import "errors"

// Sentinel errors for genuine API misuse. These are never returned for
// situations the pass is designed to handle gracefully (see pea.Bailout) —
// they indicate the caller handed the pass an inconsistent or incomplete
// graph.
var (
	// ErrNilGraph indicates a nil *Graph was passed to an operation that
	// requires one.
	ErrNilGraph = errors.New("core: nil graph")

	// ErrNilObjectModel indicates a Graph was constructed without an
	// ObjectModel, which every analysis needs to resolve attribute layouts.
	ErrNilObjectModel = errors.New("core: nil object model")

	// ErrBlockNotFound indicates an operation referenced a basic block that
	// is not part of the graph.
	ErrBlockNotFound = errors.New("core: basic block not found")

	// ErrInstructionNotFound indicates an operation referenced an
	// instruction that is not part of its basic block.
	ErrInstructionNotFound = errors.New("core: instruction not found in block")

	// ErrUnknownOpaqueType indicates the object model could not resolve the
	// requested stable type index.
	ErrUnknownOpaqueType = errors.New("core: unknown opaque type")
)
