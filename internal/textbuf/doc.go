// Package textbuf implements the segmented text buffer: a rope.Rope of
// segment.Segment values (line-starts, breaks, text chunks), the memory
// registry those chunks reference, a dirty-view set, and the coordinate
// algorithms that answer line/column and offset queries over the rope.
//
// There is no deinit: an arena-freed-at-shutdown lifecycle as described for
// the source system has no counterpart in a garbage-collected language —
// a TextBuffer and the rope nodes and registry entries it owns are
// reclaimed once unreferenced. Reset() remains the explicit "destroy my
// registered buffers now" operation; nothing else needs a matching
// teardown call.
package textbuf
