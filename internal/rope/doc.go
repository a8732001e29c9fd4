// Package rope implements a generic, positionally-indexed balanced tree.
//
// A Rope[T, S] stores a sequence of items of type T and keeps, at every
// internal node, an aggregated metric of type S covering the whole subtree
// below it. S is supplied by the caller (a "Custom" monoid in the sense of
// an associative Add with an identity at the empty leaf) together with a
// count of non-empty leaves, which the rope maintains on its own.
//
// The tree shape follows the same B-tree discipline as a conventional text
// rope: leaves hold a small, bounded run of items, internal nodes hold
// between MinChildren and MaxChildren children, and every positional
// operation — get, insert, delete, split, concat — runs in O(log n) by
// descending through per-child summaries rather than scanning.
//
//	r := rope.FromSlice[Segment, SegmentSummary](segments)
//	r, err := r.Insert(3, someSegment)
//	n := r.Count()
//
// Two extras ride on top of the base tree:
//
//   - A marker cache: S may report a per-kind count (MarkerCount), which
//     lets GetMarker locate the i-th marker of a given kind in O(log n) by
//     descending on that count the same way Get descends on item count.
//   - A Finger: a cached root-to-leaf path that lets repeated, nearby
//     seeks on the same rope value reuse the path instead of a fresh
//     descent from the root, the same trick as a text editor's "last known
//     cursor node". An edit yields a new root, after which the Finger
//     re-descends from that root.
//
// Rope values are immutable from the caller's point of view: every mutator
// returns a new Rope sharing untouched structure with the old one. Reads
// never fail; mutators fail only when the rope was constructed with a
// capacity bound and that bound would be exceeded.
package rope
