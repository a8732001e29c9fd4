package rope

// Rope is a generic, positionally-indexed balanced tree of items T, each
// carrying a Summary S. It is treated as an immutable value: every mutating
// method returns a new Rope, sharing any untouched subtrees with the
// receiver, rather than mutating in place.
type Rope[T Item[S], S Summary[S]] struct {
	root *node[T, S]
	cap  uint32 // 0 means unlimited; otherwise max item count
}

// Option configures a Rope at construction time.
type Option[T Item[S], S Summary[S]] func(*Rope[T, S])

// WithCapacity bounds the rope to at most n items; mutators that would
// exceed it fail with ErrOutOfMemory. This is the Go stand-in for the
// arena-exhaustion failure mode the spec describes for systems languages
// with explicit allocators; by default a Rope is unbounded.
func WithCapacity[T Item[S], S Summary[S]](n uint32) Option[T, S] {
	return func(r *Rope[T, S]) { r.cap = n }
}

// New returns an empty rope.
func New[T Item[S], S Summary[S]](opts ...Option[T, S]) Rope[T, S] {
	r := Rope[T, S]{root: newLeaf[T, S]()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// FromSlice builds a rope containing items, in order.
func FromSlice[T Item[S], S Summary[S]](items []T, opts ...Option[T, S]) Rope[T, S] {
	r := Rope[T, S]{root: fromItems[T, S](items)}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// FromItem builds a single-item rope. A rope holding an IsEmpty item is the
// empty rope.
func FromItem[T Item[S], S Summary[S]](x T, opts ...Option[T, S]) Rope[T, S] {
	return FromSlice[T, S]([]T{x}, opts...)
}

// Count returns the number of non-empty items in the rope, in O(1).
func (r Rope[T, S]) Count() uint32 {
	return r.root.count
}

// Summary returns the aggregated Custom metric over the whole rope, in
// O(1); it is the caller's monoid identity when the rope is empty.
func (r Rope[T, S]) Summary() S {
	return r.root.custom
}

// Depth returns the tree height.
func (r Rope[T, S]) Depth() uint32 {
	return r.root.depth()
}

// Get returns the i-th item, or false if i is out of range. Reads never
// fail.
func (r Rope[T, S]) Get(i uint32) (T, bool) {
	return r.root.itemAt(i)
}

func (r Rope[T, S]) withRoot(n *node[T, S]) Rope[T, S] {
	r.root = n
	return r
}

func (r Rope[T, S]) checkCapacity(op string, added uint32) error {
	if r.cap == 0 {
		return nil
	}
	if r.root.count+added > r.cap {
		return outOfMemory(op)
	}
	return nil
}

// Insert places x at position i, shifting items at and after i to the
// right. Inserting an IsEmpty item is a no-op, per the rope contract.
func (r Rope[T, S]) Insert(i uint32, x T) (Rope[T, S], error) {
	if x.IsEmpty() {
		return r, nil
	}
	if err := r.checkCapacity("insert", 1); err != nil {
		return r, err
	}
	left, right := r.root.split(i)
	mid := newLeafWithItems[T, S]([]T{x})
	return r.withRoot(concatNodes(concatNodes(left, mid), right)), nil
}

// InsertSlice inserts xs, in order, starting at position i.
func (r Rope[T, S]) InsertSlice(i uint32, xs []T) (Rope[T, S], error) {
	if len(xs) == 0 {
		return r, nil
	}
	if err := r.checkCapacity("insertSlice", uint32(len(xs))); err != nil {
		return r, err
	}
	left, right := r.root.split(i)
	mid := fromItems[T, S](xs)
	return r.withRoot(concatNodes(concatNodes(left, mid), right)), nil
}

// Delete removes the item at position i. Deleting the only remaining
// non-empty item yields the empty rope.
func (r Rope[T, S]) Delete(i uint32) (Rope[T, S], error) {
	if i >= r.root.count {
		return r, nil
	}
	left, temp := r.root.split(i)
	_, right := temp.split(1)
	return r.withRoot(concatNodes(left, right)), nil
}

// DeleteRange removes items in [lo, hi).
func (r Rope[T, S]) DeleteRange(lo, hi uint32) (Rope[T, S], error) {
	if lo >= hi {
		return r, nil
	}
	left, temp := r.root.split(lo)
	width := hi - lo
	if width > temp.count {
		width = temp.count
	}
	_, right := temp.split(width)
	return r.withRoot(concatNodes(left, right)), nil
}

// Replace substitutes the item at position i with x.
func (r Rope[T, S]) Replace(i uint32, x T) (Rope[T, S], error) {
	deleted, err := r.Delete(i)
	if err != nil {
		return r, err
	}
	return deleted.Insert(i, x)
}

// Split divides the rope at position at into [0,at) and [at,count).
func (r Rope[T, S]) Split(at uint32) (Rope[T, S], Rope[T, S]) {
	left, right := r.root.split(at)
	return r.withRoot(left), r.withRoot(right)
}

// Concat returns the rope formed by r followed by other.
func (r Rope[T, S]) Concat(other Rope[T, S]) Rope[T, S] {
	return r.withRoot(concatNodes(r.root, other.root))
}

// Append adds x to the end of the rope.
func (r Rope[T, S]) Append(x T) (Rope[T, S], error) {
	return r.Insert(r.root.count, x)
}

// Prepend adds x to the start of the rope.
func (r Rope[T, S]) Prepend(x T) (Rope[T, S], error) {
	return r.Insert(0, x)
}

// Items returns every non-empty item, in order. Intended for tests and
// debug dumps; callers on a hot path should prefer Walk.
func (r Rope[T, S]) Items() []T {
	var out []T
	r.root.collect(&out)
	return out
}

// Rebalance rebuilds the tree with even fan-out. Exposed so long-running
// edit sequences (fuzz tests, or a client doing many localised edits via
// the Finger API) can periodically restore the depth bound; ordinary
// Insert/Delete/Concat already keep depth within the documented slack
// without it.
func (r Rope[T, S]) Rebalance() Rope[T, S] {
	return r.withRoot(rebuildBalanced(r.root))
}
