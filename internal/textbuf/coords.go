package textbuf

import (
	"strings"

	"github.com/dshills/textengine/internal/rope"
	"github.com/dshills/textengine/internal/segment"
)

// LineInfo describes one logical line's width and offset, as emitted by
// WalkLines.
type LineInfo struct {
	LineIdx    uint32
	Width      uint32
	CharOffset uint32
}

// WalkLines emits LineInfo for every logical line in order. CharOffset
// counts previous lines' widths, plus one per preceding break iff
// includeNewlines; it is 0 for line 0 in both modes.
func (tb *TextBuffer) WalkLines(includeNewlines bool) []LineInfo {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	var infos []LineInfo
	var running uint32
	tb.rope.Walk(func(item segment.Segment, _ uint32) rope.WalkerResult {
		switch item.Kind {
		case segment.KindLineStart:
			infos = append(infos, LineInfo{LineIdx: uint32(len(infos)), CharOffset: running})
		case segment.KindBreak:
			if includeNewlines {
				running++
			}
		case segment.KindText:
			infos[len(infos)-1].Width += item.Chunk.Width
			running += item.Chunk.Width
		}
		return rope.WalkerResult{}
	})
	return infos
}

// lineMetrics walks the segments of logical line row and returns its
// display width, its grapheme-cluster count, and the absolute item index
// of its LineStart marker. O(log n + L).
func (tb *TextBuffer) lineMetrics(row uint32) (width, chars, absIdx uint32, ok bool) {
	idx, _, found := tb.rope.GetMarker(segment.MarkerLineStart, row)
	if !found {
		return 0, 0, 0, false
	}
	tb.rope.WalkFrom(idx+1, func(item segment.Segment, _ uint32) rope.WalkerResult {
		if item.Kind == segment.KindLineStart {
			return rope.WalkerResult{Stop: true}
		}
		if item.Kind == segment.KindText {
			width += item.Chunk.Width
			chars += item.Chunk.Chars
		}
		return rope.WalkerResult{}
	})
	return width, chars, idx, true
}

// LineWidthAt returns logical line row's display width, or 0 if row is
// out of range.
func (tb *TextBuffer) LineWidthAt(row uint32) uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	w, _, _, _ := tb.lineMetrics(row)
	return w
}

// GetMaxLineWidth returns the widest logical line's display width.
func (tb *TextBuffer) GetMaxLineWidth() uint32 {
	n := tb.GetLineCount()
	var max uint32
	for row := uint32(0); row < n; row++ {
		if w := tb.LineWidthAt(row); w > max {
			max = w
		}
	}
	return max
}

// GetTotalWidth returns the buffer's total display width, O(1).
func (tb *TextBuffer) GetTotalWidth() uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.rope.Summary().Width
}

// lineCharOffset returns the char-offset (Chars metric) of the start of
// logical line row, O(log n).
func (tb *TextBuffer) lineCharOffset(row uint32) (uint32, bool) {
	idx, _, ok := tb.rope.GetMarker(segment.MarkerLineStart, row)
	if !ok {
		return 0, false
	}
	return tb.rope.SummaryBefore(idx).Chars, true
}

// CoordsToOffset returns the absolute char offset of (row,col); newlines
// carry weight 1. col beyond the row's character count clamps to it. An
// out-of-range row returns ok=false.
func (tb *TextBuffer) CoordsToOffset(row, col uint32) (uint32, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.coordsToOffset(row, col)
}

func (tb *TextBuffer) coordsToOffset(row, col uint32) (uint32, bool) {
	_, chars, absIdx, ok := tb.lineMetrics(row)
	if !ok {
		return 0, false
	}
	if col > chars {
		col = chars
	}
	return tb.rope.SummaryBefore(absIdx).Chars + col, true
}

// OffsetToCoords is the inverse of CoordsToOffset: it finds the logical
// line containing offset via a binary search over line char-offsets
// (O(log line_count) marker lookups, each O(log n)), then resolves the
// column within that line with one local walk.
func (tb *TextBuffer) OffsetToCoords(offset uint32) (row, col uint32, ok bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.offsetToCoords(offset)
}

func (tb *TextBuffer) offsetToCoords(offset uint32) (row, col uint32, ok bool) {
	total := tb.rope.Summary().Chars
	if offset > total {
		return 0, 0, false
	}
	n := tb.rope.MarkerCount(segment.MarkerLineStart)
	if n == 0 {
		return 0, 0, false
	}

	lo, hi := uint32(0), n-1
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		off, _ := tb.lineCharOffset(mid)
		if off <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	lineOffset, _ := tb.lineCharOffset(lo)
	_, chars, _, found := tb.lineMetrics(lo)
	if !found {
		return 0, 0, false
	}
	col = offset - lineOffset
	if col > chars {
		col = chars
	}
	return lo, col, true
}

// OffsetToPointUTF16 converts a char offset to a UTF-16 (line,column)
// point, for embedding protocols that count columns in UTF-16 code units.
func (tb *TextBuffer) OffsetToPointUTF16(offset uint32) (line, column uint32, ok bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	row, col, ok := tb.offsetToCoords(offset)
	if !ok {
		return 0, 0, false
	}
	text, found := tb.lineText(row)
	if !found {
		return row, 0, true
	}
	var seen uint32
	for _, c := range clusters(text, tb.widthMethod) {
		if seen >= col {
			break
		}
		for _, r := range c {
			if r >= 0x10000 {
				column += 2
			} else {
				column++
			}
		}
		seen++
	}
	return row, column, true
}

// PointUTF16ToOffset is the inverse of OffsetToPointUTF16.
func (tb *TextBuffer) PointUTF16ToOffset(line, column uint32) (uint32, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	text, ok := tb.lineText(line)
	if !ok {
		return 0, false
	}
	var utf16Col, clusterCol uint32
	for _, c := range clusters(text, tb.widthMethod) {
		if utf16Col >= column {
			break
		}
		for _, r := range c {
			if r >= 0x10000 {
				utf16Col += 2
			} else {
				utf16Col++
			}
		}
		clusterCol++
	}
	return tb.coordsToOffset(line, clusterCol)
}

// lineText concatenates a logical line's Text segment bytes into one
// string, so a grapheme cluster fragmented across consecutive chunks
// (e.g. a styled-text ingest that split a ZWJ sequence across two style
// runs) measures correctly regardless of where the chunk boundary fell.
// Callers must hold tb.mu.
func (tb *TextBuffer) lineText(row uint32) (string, bool) {
	idx, _, ok := tb.rope.GetMarker(segment.MarkerLineStart, row)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	tb.rope.WalkFrom(idx+1, func(item segment.Segment, _ uint32) rope.WalkerResult {
		if item.Kind == segment.KindLineStart {
			return rope.WalkerResult{Stop: true}
		}
		if item.Kind == segment.KindText {
			if buf, ok := tb.registry.Get(item.Chunk.MemID); ok {
				sb.Write(buf[item.Chunk.ByteStart:item.Chunk.ByteEnd])
			}
		}
		return rope.WalkerResult{}
	})
	return sb.String(), true
}

// GetGraphemeWidthAt returns the display width of the grapheme starting at
// column col of logical line row. Tabs report TabWidth(); a column past
// the row's end, an invalid row, or an empty line report 0. A column that
// falls in the interior of a wide grapheme also reports 0 (the chosen
// resolution of the source's "implementation-defined but consistent"
// interior-cell behaviour).
func (tb *TextBuffer) GetGraphemeWidthAt(row, col uint32) uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	text, ok := tb.lineText(row)
	if !ok || text == "" {
		return 0
	}
	var cell uint32
	for _, c := range clusters(text, tb.widthMethod) {
		w := clusterWidth(c, tb.widthMethod, tb.tabWidth)
		if cell == col {
			return w
		}
		if cell > col {
			return 0
		}
		cell += w
	}
	return 0
}

// GetPrevGraphemeWidth returns the width of the grapheme immediately
// preceding column col on logical line row. 0 at col=0 or on an
// empty/invalid row. A col past the row's width clamps to the row end.
func (tb *TextBuffer) GetPrevGraphemeWidth(row, col uint32) uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	if col == 0 {
		return 0
	}
	text, ok := tb.lineText(row)
	if !ok || text == "" {
		return 0
	}
	var cell, prev uint32
	for _, c := range clusters(text, tb.widthMethod) {
		if cell >= col {
			break
		}
		prev = clusterWidth(c, tb.widthMethod, tb.tabWidth)
		cell += prev
	}
	return prev
}
