package list

import (
	"fmt"
)

// Node is a handle on a node of a chain.
// A handle turns stale once its node is removed from the chain,
// the zero Node is never valid.
type Node[T comparable] struct {
	chain *xChain[T]
	ref   nodeRef
	gen   uint32
}

func newNode[T comparable](c *xChain[T], ref nodeRef) Node[T] {
	if ref == nilRef {
		return Node[T]{}
	}
	return Node[T]{
		chain: c,
		ref:   ref,
		gen:   c.arena.node(ref).gen,
	}
}

func (n Node[T]) Valid() bool {
	return n.chain != nil && n.chain.arena.isCurrent(n.ref, n.gen)
}

// Value returns the zero value of T for an invalid handle.
func (n Node[T]) Value() T {
	if !n.Valid() {
		return *new(T)
	}
	return n.chain.arena.node(n.ref).value
}

func (n Node[T]) SetValue(v T) bool {
	if !n.Valid() {
		return false
	}
	n.chain.arena.node(n.ref).value = v
	return true
}

func (n Node[T]) Next() (Node[T], bool) {
	if !n.Valid() {
		return Node[T]{}, false
	}
	next := n.chain.arena.node(n.ref).next
	return newNode(n.chain, next), next != nilRef
}

// Prev is always absent for a singly linked chain.
func (n Node[T]) Prev() (Node[T], bool) {
	if !n.Valid() {
		return Node[T]{}, false
	}
	prev := n.chain.arena.node(n.ref).prev
	return newNode(n.chain, prev), prev != nilRef
}

func (n Node[T]) String() string {
	if !n.Valid() {
		return "<nil>"
	}
	return fmt.Sprint(n.Value())
}

// GoString renders the node with its immediate neighbours.
func (n Node[T]) GoString() string {
	if !n.Valid() {
		return "Node(<nil>)"
	}
	neighbour := func(ref nodeRef) string {
		if ref == nilRef {
			return "nil"
		}
		return fmt.Sprint(n.chain.arena.node(ref).value)
	}
	node := n.chain.arena.node(n.ref)
	if n.chain.arena.backLinked {
		return fmt.Sprintf("DoublyNode(%s, %v, %s)", neighbour(node.prev), node.value, neighbour(node.next))
	}
	return fmt.Sprintf("SinglyNode(%v, %s)", node.value, neighbour(node.next))
}
