package list

import (
	"iter"
)

// Note that the node chain is not thread safe.
// Both variants share one container, only the link primitive,
// the reverse traversal and the removal are specific to a variant.

type ChainKind uint8

const (
	SinglyLinked ChainKind = iota
	DoublyLinked
)

func (k ChainKind) String() string {
	switch k {
	case SinglyLinked:
		return "SinglyLinkedChain"
	case DoublyLinked:
		return "DoublyLinkedChain"
	default:
	}
	return "UnknownChain"
}

// Chain is an index-addressable sequence backed by a chain of nodes.
// Valid indices are in [0, Len()), Insert also accepts Len().
type Chain[T comparable] interface {
	Kind() ChainKind
	Len() int64
	// Get returns the value at idx.
	Get(idx int64) (T, error)
	// Set overwrites the value at idx.
	Set(idx int64, v T) error
	// Delete removes the node at idx.
	Delete(idx int64) error
	// Insert inserts v in front of the node at idx.
	// Inserting at Len() appends v.
	Insert(idx int64, v T) error
	// Append adds v behind the tail in O(1).
	Append(v T)
	// Extend appends the values in order.
	Extend(values ...T)
	// Pop removes the node at idx and returns its value.
	Pop(idx int64) (T, error)
	// PopBack is Pop(Len()-1).
	PopBack() (T, error)
	// Remove removes the first node holding v and reports whether one was found.
	Remove(v T) bool
	// Index returns the index of the first node holding v.
	Index(v T) (int64, bool)
	Contains(v T) bool
	// Count returns the number of nodes holding v.
	Count(v T) int64
	// All iterates the values from head to tail.
	All() iter.Seq[T]
	// Backward iterates the values from tail to head.
	Backward() iter.Seq[T]
	// Values returns a copy of the values from head to tail.
	Values() []T
	Head() (Node[T], bool)
	Tail() (Node[T], bool)
	NodeAt(idx int64) (Node[T], error)
	// Clear drops all nodes.
	Clear()
	// Verify checks the structural invariants and returns all violations.
	Verify() error
	String() string
	GoString() string
}
