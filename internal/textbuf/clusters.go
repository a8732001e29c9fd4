package textbuf

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// ClusterSpan is one grapheme cluster's position within a registered byte
// buffer, plus its precomputed display width under the buffer's active
// width method.
type ClusterSpan struct {
	ByteStart, ByteEnd uint32
	Width              uint32
}

// ClusterSpans segments the byte range [start,end) of mem buffer memID into
// grapheme clusters (or codepoints, under WidthWCWidth), each tagged with
// its absolute byte offsets and display width. It is the primitive the view
// layer's wrap algorithm uses to find candidate break points without
// re-deriving clustering rules of its own.
func (tb *TextBuffer) ClusterSpans(memID uint8, start, end uint32) []ClusterSpan {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.clusterSpans(memID, start, end)
}

// clusterSpans is the unlocked core of ClusterSpans. Callers must hold
// tb.mu for reading or writing.
func (tb *TextBuffer) clusterSpans(memID uint8, start, end uint32) []ClusterSpan {
	buf, ok := tb.registry.Get(memID)
	if !ok || start >= end {
		return nil
	}
	s := string(buf[start:end])

	if tb.widthMethod == WidthWCWidth {
		var spans []ClusterSpan
		cursor := start
		for _, r := range s {
			n := uint32(utf8.RuneLen(r))
			spans = append(spans, ClusterSpan{
				ByteStart: cursor,
				ByteEnd:   cursor + n,
				Width:     clusterWidth(string(r), tb.widthMethod, tb.tabWidth),
			})
			cursor += n
		}
		return spans
	}

	var spans []ClusterSpan
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		lo, hi := g.Positions()
		c := g.Str()
		if tb.widthMethod == WidthUnicode || !strings.ContainsRune(c, zwj) {
			spans = append(spans, ClusterSpan{
				ByteStart: start + uint32(lo),
				ByteEnd:   start + uint32(hi),
				Width:     clusterWidth(c, tb.widthMethod, tb.tabWidth),
			})
			continue
		}
		spans = append(spans, splitClusterOnZWJ(c, start+uint32(lo), tb.widthMethod, tb.tabWidth)...)
	}
	return spans
}

// splitClusterOnZWJ breaks a ZWJ-joined cluster (already known to span
// [absStart, absStart+len(c)) in the source buffer) into one span per
// ZWJ-delimited piece, assigning each joiner's own bytes to the piece that
// precedes it.
func splitClusterOnZWJ(c string, absStart uint32, method WidthMethod, tabWidth uint32) []ClusterSpan {
	pieces := strings.Split(c, string(zwj))
	var spans []ClusterSpan
	cursor := absStart
	for i, p := range pieces {
		pieceLen := uint32(len(p))
		end := cursor + pieceLen
		if i < len(pieces)-1 {
			end += uint32(len(string(zwj))) // absorb the joiner into this piece's range
		}
		if p != "" {
			spans = append(spans, ClusterSpan{
				ByteStart: cursor,
				ByteEnd:   end,
				Width:     clusterWidth(p, method, tabWidth),
			})
		}
		cursor = end
	}
	if len(spans) == 0 {
		return []ClusterSpan{{ByteStart: absStart, ByteEnd: absStart + uint32(len(c)), Width: clusterWidth(c, method, tabWidth)}}
	}
	return spans
}
