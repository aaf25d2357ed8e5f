package list

var (
	_ chainLinker[struct{}] = singlyLinker[struct{}]{}
	_ chainLinker[struct{}] = doublyLinker[struct{}]{}
)

// chainLinker is the whole difference between the chain variants.
type chainLinker[T comparable] interface {
	kind() ChainKind
	// link makes right the successor of left.
	link(c *xChain[T], left, right nodeRef) error
	// backward visits the nodes from tail to head until yield returns false.
	backward(c *xChain[T], yield func(ref nodeRef) bool)
	// unlink detaches the node at a validated idx and returns it.
	// The caller releases the node and updates the length.
	unlink(c *xChain[T], idx int64) (nodeRef, error)
}

type singlyLinker[T comparable] struct{}

func (singlyLinker[T]) kind() ChainKind {
	return SinglyLinked
}

func (singlyLinker[T]) link(c *xChain[T], left, right nodeRef) error {
	return c.arena.setNext(left, right)
}

// Without back links every step re-walks from the head, O(n^2) in total.
// A loop body that shrinks the chain below i ends the traversal.
func (singlyLinker[T]) backward(c *xChain[T], yield func(ref nodeRef) bool) {
	for i := c.len - 1; i >= 0; i-- {
		if i >= c.len {
			return
		}
		if !yield(c.nodeAt(i)) {
			return
		}
	}
}

func (l singlyLinker[T]) unlink(c *xChain[T], idx int64) (nodeRef, error) {
	if idx == 0 {
		target := c.head
		c.head = c.arena.node(target).next
		if c.head == nilRef {
			c.tail = nilRef
		}
		return target, nil
	}

	pred := c.nodeAt(idx - 1)
	target := c.arena.node(pred).next
	if err := l.link(c, pred, c.arena.node(target).next); err != nil {
		return nilRef, err
	}
	if target == c.tail {
		c.tail = pred
	}
	return target, nil
}

type doublyLinker[T comparable] struct {
	singlyLinker[T]
}

func (doublyLinker[T]) kind() ChainKind {
	return DoublyLinked
}

// right must be present.
func (l doublyLinker[T]) link(c *xChain[T], left, right nodeRef) error {
	if err := l.singlyLinker.link(c, left, right); err != nil {
		return err
	}
	return c.arena.setPrev(right, left)
}

func (doublyLinker[T]) backward(c *xChain[T], yield func(ref nodeRef) bool) {
	n := c.len
	ref, gen := c.tail, c.arena.node(c.tail).gen
	for i := int64(0); i < n && c.arena.isCurrent(ref, gen); i++ {
		prev := c.arena.node(ref).prev
		prevGen := c.arena.node(prev).gen
		if !yield(ref) {
			return
		}
		ref, gen = prev, prevGen
	}
}

// The located node already knows both neighbours, no predecessor pass.
func (l doublyLinker[T]) unlink(c *xChain[T], idx int64) (nodeRef, error) {
	target := c.nodeAt(idx)
	node := c.arena.node(target)
	prev, next := node.prev, node.next
	switch {
	case prev == nilRef && next == nilRef:
		c.head, c.tail = nilRef, nilRef
	case prev == nilRef:
		if err := c.arena.setPrev(next, nilRef); err != nil {
			return nilRef, err
		}
		c.head = next
	case next == nilRef:
		if err := c.arena.setNext(prev, nilRef); err != nil {
			return nilRef, err
		}
		c.tail = prev
	default:
		if err := l.link(c, prev, next); err != nil {
			return nilRef, err
		}
	}
	return target, nil
}
