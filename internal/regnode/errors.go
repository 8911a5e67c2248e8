package regnode

import (
	"errors"
	"fmt"
)

// ErrDepthExceeded is returned when a tree is deeper than MaxDepth. Depth
// comes from an external record, so it is checked, not trusted.
var ErrDepthExceeded = errors.New("regnode tree exceeds maximum depth")

// UnresolvedReferenceError reports a COMMON node whose identifier was never
// bound earlier in the same evaluation.
type UnresolvedReferenceError struct {
	ID int64
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("no value bound for var_cnt %d referenced by COMMON node", e.ID)
}

// ArityError reports a node with the wrong number of children: a binary
// operation without exactly two, or an ARG/PHI/SELECT with none.
type ArityError struct {
	Kind Kind
	Want int // exact for binary kinds, minimum otherwise
	Got  int
}

func (e *ArityError) Error() string {
	if e.Kind.IsBinary() {
		return fmt.Sprintf("%s node must have exactly %d children, got %d", e.Kind, e.Want, e.Got)
	}
	return fmt.Sprintf("%s node must have at least %d child, got %d", e.Kind, e.Want, e.Got)
}

// UnknownKindError reports a tag outside the closed variant set. From
// decoding it carries the offending wire tag; from evaluation it carries
// the corrupt Kind value (defensive, unreachable for decoded trees).
type UnknownKindError struct {
	Tag  string
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("unknown node value type %q", e.Tag)
	}
	return fmt.Sprintf("unknown node kind %d", int(e.Kind))
}
