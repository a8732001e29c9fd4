// Package grapheme implements an interned pool for multi-byte grapheme
// cluster payloads, addressed by compact generation-tagged handles instead
// of raw byte slices.
//
// A Handle packs a size class, a generation, and a slot index into a single
// 32-bit word. Size classes bucket payloads by byte length so a short
// cluster (most of them) never wastes a large slot; each class grows by
// whole pages of slots as needed. Freeing a payload (Decref to zero) bumps
// that slot's generation and returns it to the class's free list, so a
// handle captured before the free is detectably stale (WrongGeneration)
// rather than silently resolving to whatever was allocated into the reused
// slot afterwards.
//
// This mirrors the slab-recycling idiom of a sync.Pool-backed node pool,
// generalised with an explicit generation tag so the caller — not the
// garbage collector — decides a payload's lifetime.
package grapheme
