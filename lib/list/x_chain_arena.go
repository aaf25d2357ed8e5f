package list

import (
	"fmt"

	"github.com/benz9527/xseq/lib/infra"
)

// nodeRef addresses a slot of the chain arena.
// The zero ref is never allocated and stands for an absent link.
type nodeRef uint64

const nilRef nodeRef = 0

// The next link owns the successor, the prev link is a back-reference
// used by traversal only.
type chainNode[T comparable] struct {
	value T
	next  nodeRef
	prev  nodeRef
	gen   uint32 // bumped on free to detect stale handles
	inUse bool
}

// chainArena stores the nodes of a single chain.
// Pointers returned by node are invalidated by the next allocate.
type chainArena[T comparable] struct {
	slots      []chainNode[T]
	recycled   []nodeRef
	backLinked bool
}

func newChainArena[T comparable](capacity int, backLinked bool) *chainArena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &chainArena[T]{
		slots:      make([]chainNode[T], 1, capacity+1), // non-zero ref
		recycled:   make([]nodeRef, 0, 8),
		backLinked: backLinked,
	}
}

func (arena *chainArena[T]) allocate(v T) nodeRef {
	if n := len(arena.recycled); n > 0 {
		ref := arena.recycled[n-1]
		arena.recycled = arena.recycled[:n-1]
		slot := &arena.slots[ref]
		slot.value = v
		slot.next, slot.prev = nilRef, nilRef
		slot.inUse = true
		return ref
	}
	arena.slots = append(arena.slots, chainNode[T]{value: v, inUse: true})
	return nodeRef(len(arena.slots) - 1)
}

// free releases the value and makes every handle on ref stale.
func (arena *chainArena[T]) free(ref nodeRef) {
	if !arena.isLive(ref) {
		return
	}
	arena.slots[ref] = chainNode[T]{gen: arena.slots[ref].gen + 1}
	arena.recycled = append(arena.recycled, ref)
}

func (arena *chainArena[T]) node(ref nodeRef) *chainNode[T] {
	return &arena.slots[ref]
}

func (arena *chainArena[T]) isLive(ref nodeRef) bool {
	return ref != nilRef && ref < nodeRef(len(arena.slots)) && arena.slots[ref].inUse
}

// isCurrent reports whether ref is still the node it was when gen was read.
func (arena *chainArena[T]) isCurrent(ref nodeRef, gen uint32) bool {
	return arena.isLive(ref) && arena.slots[ref].gen == gen
}

func (arena *chainArena[T]) liveLen() int64 {
	return int64(len(arena.slots) - 1 - len(arena.recycled))
}

// checkLink accepts an absent link or a live node of this arena.
func (arena *chainArena[T]) checkLink(ref nodeRef) error {
	if ref == nilRef || arena.isLive(ref) {
		return nil
	}
	return infra.WrapErrorStackWithMessage(ErrChainNodeType, fmt.Sprintf("link to released or foreign node %d", ref))
}

func (arena *chainArena[T]) setNext(ref, next nodeRef) error {
	if !arena.isLive(ref) {
		return infra.WrapErrorStackWithMessage(ErrChainNodeType, fmt.Sprintf("link from released or foreign node %d", ref))
	}
	if err := arena.checkLink(next); err != nil {
		return err
	}
	arena.slots[ref].next = next
	return nil
}

func (arena *chainArena[T]) setPrev(ref, prev nodeRef) error {
	if !arena.backLinked {
		return infra.WrapErrorStackWithMessage(ErrChainNodeType, "singly linked node has no back link")
	}
	if !arena.isLive(ref) {
		return infra.WrapErrorStackWithMessage(ErrChainNodeType, fmt.Sprintf("link from released or foreign node %d", ref))
	}
	if err := arena.checkLink(prev); err != nil {
		return err
	}
	arena.slots[ref].prev = prev
	return nil
}
