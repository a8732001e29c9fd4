package rope

// WalkerResult controls how a Walk continues after visiting an item.
type WalkerResult struct {
	// Stop ends the walk immediately; no further items are visited.
	Stop bool
	// SkipSubtree abandons the remaining items batched alongside this one
	// (the rest of the leaf the item physically lives in) and resumes at
	// the next leaf in order.
	SkipSubtree bool
}

// WalkFunc is called once per non-empty item, in order, with its absolute
// position.
type WalkFunc[T any] func(item T, idx uint32) WalkerResult

// Walk visits every item in the rope, in order, starting from position 0.
func (r Rope[T, S]) Walk(fn WalkFunc[T]) {
	var idx uint32
	walkNode(r.root, &idx, fn)
}

// WalkFrom visits every item starting at position from.
func (r Rope[T, S]) WalkFrom(from uint32, fn WalkFunc[T]) {
	if from >= r.root.count {
		return
	}
	idx := uint32(0)
	walkNodeFrom(r.root, from, &idx, fn)
}

func walkNode[T Item[S], S Summary[S]](n *node[T, S], idx *uint32, fn WalkFunc[T]) bool {
	if n.isLeaf() {
		leafEnd := *idx + uint32(len(n.items))
		for _, it := range n.items {
			res := fn(it, *idx)
			*idx++
			if res.Stop {
				return true
			}
			if res.SkipSubtree {
				*idx = leafEnd
				break
			}
		}
		return false
	}
	for _, c := range n.children {
		if walkNode(c, idx, fn) {
			return true
		}
	}
	return false
}

// walkNodeFrom descends the tree, skipping whole children that end before
// from without invoking fn, then walks the rest in order. idx tracks the
// absolute position of the next item to consider.
func walkNodeFrom[T Item[S], S Summary[S]](n *node[T, S], from uint32, idx *uint32, fn WalkFunc[T]) bool {
	if n.isLeaf() {
		leafEnd := *idx + uint32(len(n.items))
		for _, it := range n.items {
			pos := *idx
			*idx++
			if pos < from {
				continue
			}
			res := fn(it, pos)
			if res.Stop {
				return true
			}
			if res.SkipSubtree {
				*idx = leafEnd
				break
			}
		}
		return false
	}
	for _, c := range n.children {
		if *idx+c.count <= from {
			*idx += c.count
			continue
		}
		if walkNodeFrom(c, from, idx, fn) {
			return true
		}
	}
	return false
}
