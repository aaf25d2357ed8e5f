package list

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xseq/lib/infra"
	"github.com/benz9527/xseq/lib/xlog"
)

var (
	_ Chain[struct{}] = (*xChain[struct{}])(nil) // Type check assertion
)

var (
	// ErrChainIndexType and ErrChainNodeType are the type errors.
	ErrChainIndexType = errors.New("[x-chain] index is not an integer")
	ErrChainNodeType  = errors.New("[x-chain] link target is neither absent nor a node of the chain")
	// ErrChainIndexOutOfRange is the range error.
	ErrChainIndexOutOfRange = errors.New("[x-chain] index out of range")
	// ErrChainCorrupted is only reported by Verify.
	ErrChainCorrupted = errors.New("[x-chain] structure corrupted")
)

// xChain owns its nodes through the arena. The head is the entry of the
// owning forward links, the tail is a shortcut for the O(1) append.
type xChain[T comparable] struct {
	arena  *chainArena[T]
	linker chainLinker[T]
	logger xlog.XLogger
	stats  *chainStats
	name   string
	head   nodeRef
	tail   nodeRef
	len    int64
}

func NewSinglyLinkedChain[T comparable](values []T, opts ...ChainOption) Chain[T] {
	return newXChain[T](singlyLinker[T]{}, values, opts...)
}

func NewDoublyLinkedChain[T comparable](values []T, opts ...ChainOption) Chain[T] {
	return newXChain[T](doublyLinker[T]{}, values, opts...)
}

func newXChain[T comparable](linker chainLinker[T], values []T, opts ...ChainOption) *xChain[T] {
	opt := &chainOption{
		name:     linker.kind().String(),
		arenaCap: max(defaultChainArenaCapacity, len(values)),
	}
	for _, o := range opts {
		if err := o(opt); err != nil {
			panic(err)
		}
	}

	c := &xChain[T]{
		arena:  newChainArena[T](opt.arenaCap, linker.kind() == DoublyLinked),
		linker: linker,
		logger: opt.logger,
		name:   opt.name,
	}
	if opt.statsEnabled {
		c.stats = newChainStats(opt.name)
	}
	c.Extend(values...)
	return c
}

// AsIndex converts a dynamically typed index.
// Values of a non-integer kind are a type error.
func AsIndex(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), nil
		}
		return 0, infra.WrapErrorStackWithMessage(ErrChainIndexOutOfRange, fmt.Sprintf("index %v overflows int64", v))
	default:
	}
	return 0, infra.WrapErrorStackWithMessage(ErrChainIndexType, fmt.Sprintf("index %v of type %T", v, v))
}

func (c *xChain[T]) Kind() ChainKind {
	return c.linker.kind()
}

func (c *xChain[T]) Len() int64 {
	return c.len
}

// validateIndex accepts [0, len), or [0, len] if inclusive.
func (c *xChain[T]) validateIndex(idx int64, inclusive bool) error {
	upper := c.len
	if inclusive {
		upper++
	}
	if idx < 0 || idx >= upper {
		return infra.WrapErrorStackWithMessage(
			ErrChainIndexOutOfRange,
			fmt.Sprintf("index %d not in [0, %d)", idx, upper),
		)
	}
	return nil
}

// nodeAt is the only index traversal, idx must be validated.
func (c *xChain[T]) nodeAt(idx int64) nodeRef {
	ref := c.head
	for i := int64(0); i < idx; i++ {
		ref = c.arena.node(ref).next
	}
	c.stats.RecordTraverseSteps(idx)
	return ref
}

func (c *xChain[T]) link(left, right nodeRef) error {
	return c.linker.link(c, left, right)
}

func (c *xChain[T]) reject(op chainOp, err error) error {
	c.stats.IncreaseRejectedCount(op, err)
	if c.logger != nil {
		fields := []zap.Field{
			zap.String("chain", c.name),
			zap.String("op", string(op)),
			zap.Int64("len", c.len),
		}
		var es infra.ErrorStack
		if errors.As(err, &es) {
			fields = append(fields, zap.Inline(es))
		} else {
			fields = append(fields, zap.Error(err))
		}
		c.logger.Warn("chain operation rejected", fields...)
	}
	return err
}

func (c *xChain[T]) accept(op chainOp, fields ...zap.Field) {
	c.stats.IncreaseOpCount(op)
	if c.logger != nil {
		c.logger.Debug("chain "+string(op),
			append([]zap.Field{
				zap.String("chain", c.name),
				zap.Int64("len", c.len),
			}, fields...)...,
		)
	}
}

func (c *xChain[T]) Get(idx int64) (T, error) {
	if err := c.validateIndex(idx, false); err != nil {
		return *new(T), c.reject(opGet, err)
	}
	c.stats.IncreaseOpCount(opGet)
	return c.arena.node(c.nodeAt(idx)).value, nil
}

func (c *xChain[T]) Set(idx int64, v T) error {
	if err := c.validateIndex(idx, false); err != nil {
		return c.reject(opSet, err)
	}
	c.arena.node(c.nodeAt(idx)).value = v
	c.accept(opSet, zap.Int64("index", idx))
	return nil
}

func (c *xChain[T]) NodeAt(idx int64) (Node[T], error) {
	if err := c.validateIndex(idx, false); err != nil {
		return Node[T]{}, c.reject(opNodeAt, err)
	}
	c.stats.IncreaseOpCount(opNodeAt)
	return newNode(c, c.nodeAt(idx)), nil
}

func (c *xChain[T]) Head() (Node[T], bool) {
	return newNode(c, c.head), c.head != nilRef
}

func (c *xChain[T]) Tail() (Node[T], bool) {
	return newNode(c, c.tail), c.tail != nilRef
}

func (c *xChain[T]) Delete(idx int64) error {
	_, err := c.pop(idx)
	return err
}

func (c *xChain[T]) Pop(idx int64) (T, error) {
	return c.pop(idx)
}

// PopBack removes the tail, an empty chain is a range error.
func (c *xChain[T]) PopBack() (T, error) {
	return c.pop(c.len - 1)
}

func (c *xChain[T]) pop(idx int64) (T, error) {
	if err := c.validateIndex(idx, false); err != nil {
		return *new(T), c.reject(opDelete, err)
	}
	target, err := c.linker.unlink(c, idx)
	if err != nil {
		return *new(T), c.reject(opDelete, err)
	}
	v := c.arena.node(target).value
	c.arena.free(target)
	c.len--
	c.stats.RecordLen(-1)
	c.accept(opDelete, zap.Int64("index", idx))
	return v, nil
}

func (c *xChain[T]) Insert(idx int64, v T) error {
	if err := c.validateIndex(idx, true); err != nil {
		return c.reject(opInsert, err)
	}
	if idx == c.len {
		return c.append(v)
	}

	if idx == 0 {
		ref := c.arena.allocate(v)
		if err := c.link(ref, c.head); err != nil {
			c.arena.free(ref)
			return c.reject(opInsert, err)
		}
		c.head = ref
	} else {
		pred := c.nodeAt(idx - 1)
		succ := c.arena.node(pred).next
		succPrev := c.arena.node(succ).prev
		ref := c.arena.allocate(v)
		if err := c.link(ref, succ); err != nil {
			c.arena.free(ref)
			return c.reject(opInsert, err)
		}
		if err := c.link(pred, ref); err != nil {
			// Undo the back link of succ, it is the only mutation so far.
			c.arena.node(succ).prev = succPrev
			c.arena.free(ref)
			return c.reject(opInsert, err)
		}
	}
	c.len++
	c.stats.RecordLen(1)
	c.accept(opInsert, zap.Int64("index", idx))
	return nil
}

func (c *xChain[T]) append(v T) error {
	ref := c.arena.allocate(v)
	if c.tail == nilRef {
		c.head, c.tail = ref, ref
	} else {
		if err := c.link(c.tail, ref); err != nil {
			c.arena.free(ref)
			return c.reject(opAppend, err)
		}
		c.tail = ref
	}
	c.len++
	c.stats.RecordLen(1)
	c.accept(opAppend)
	return nil
}

func (c *xChain[T]) Append(v T) {
	_ = c.append(v)
}

func (c *xChain[T]) Extend(values ...T) {
	for _, v := range values {
		_ = c.append(v)
	}
}

func (c *xChain[T]) Remove(v T) bool {
	idx, ok := c.Index(v)
	if !ok {
		return false
	}
	return c.Delete(idx) == nil
}

func (c *xChain[T]) Index(v T) (int64, bool) {
	idx := int64(0)
	for value := range c.All() {
		if value == v {
			return idx, true
		}
		idx++
	}
	return -1, false
}

func (c *xChain[T]) Contains(v T) bool {
	_, ok := c.Index(v)
	return ok
}

func (c *xChain[T]) Count(v T) int64 {
	count := int64(0)
	for value := range c.All() {
		if value == v {
			count++
		}
	}
	return count
}

// All takes exactly the length seen when the iteration starts.
// The successor is loaded before yield, so the yielded node may be
// removed by the loop body. The iteration stops early once the loaded
// successor is removed as well.
func (c *xChain[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		n := c.len
		ref, gen := c.head, c.arena.node(c.head).gen
		for i := int64(0); i < n && c.arena.isCurrent(ref, gen); i++ {
			node := c.arena.node(ref)
			next := node.next
			nextGen := c.arena.node(next).gen
			if !yield(node.value) {
				return
			}
			ref, gen = next, nextGen
		}
	}
}

func (c *xChain[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		c.linker.backward(c, func(ref nodeRef) bool {
			return yield(c.arena.node(ref).value)
		})
	}
}

func (c *xChain[T]) Values() []T {
	values := make([]T, 0, c.len)
	for v := range c.All() {
		values = append(values, v)
	}
	return values
}

func (c *xChain[T]) Clear() {
	for ref := c.head; ref != nilRef; {
		next := c.arena.node(ref).next
		c.arena.free(ref)
		ref = next
	}
	c.stats.RecordLen(-c.len)
	c.head, c.tail, c.len = nilRef, nilRef, 0
	c.accept(opClear)
}

func (c *xChain[T]) Verify() error {
	var merr error
	violate := func(format string, args ...any) {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrChainCorrupted, fmt.Sprintf(format, args...)))
	}

	if (c.len == 0) != (c.head == nilRef) || (c.len == 0) != (c.tail == nilRef) {
		violate("len %d with head %d and tail %d", c.len, c.head, c.tail)
	}

	var (
		prev  = nilRef
		ref   = c.head
		count = int64(0)
	)
	for ref != nilRef && count <= c.len {
		if !c.arena.isLive(ref) {
			violate("released node %d reachable at index %d", ref, count)
			break
		}
		node := c.arena.node(ref)
		if node.prev != prev && (c.arena.backLinked || node.prev != nilRef) {
			violate("node %d at index %d links back to %d instead of %d", ref, count, node.prev, prev)
		}
		prev, ref = ref, node.next
		count++
	}
	if count != c.len {
		violate("%d reachable nodes for len %d", count, c.len)
	}
	if prev != c.tail {
		violate("last reachable node %d is not the tail %d", prev, c.tail)
	}
	if live := c.arena.liveLen(); live != c.len {
		violate("%d live nodes in the arena for len %d", live, c.len)
	}
	return merr
}

func (c *xChain[T]) String() string {
	return fmt.Sprint(c.Values())
}

func (c *xChain[T]) GoString() string {
	return fmt.Sprintf("%s(%v)", c.Kind(), c.Values())
}
