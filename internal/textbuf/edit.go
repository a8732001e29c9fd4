package textbuf

import (
	"github.com/dshills/textengine/internal/rope"
	"github.com/dshills/textengine/internal/segment"
	"github.com/dshills/textengine/internal/style"
)

// InsertCharsAt inserts text at the logical (row,col) position, splitting
// the Text chunk under col if necessary, and returns the (row,col) of the
// cursor immediately after the inserted bytes. It mirrors the teacher's
// Insert idiom (splice into the rope at an offset) at segment granularity
// rather than byte granularity, since the rope here holds typed leaves,
// not raw bytes.
func (tb *TextBuffer) InsertCharsAt(row, col uint32, text []byte) (uint32, uint32, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if len(text) == 0 {
		return row, col, nil
	}

	idx, err := tb.locateLocked(row, col)
	if err != nil {
		return row, col, err
	}

	segs, err := tb.buildInsertionSegmentsLocked(text)
	if err != nil {
		return row, col, err
	}
	r, err := tb.rope.InsertSlice(idx, segs)
	if err != nil {
		return row, col, outOfMemory("insertText")
	}
	tb.setRopeLocked(r)

	newRow, newCol := tb.advanceLocked(row, col, text)
	return newRow, newCol, nil
}

// DeleteCharRange removes every segment item between (r0,c0) and (r1,c1)
// (r0,c0 ordered before r1,c1), splitting the chunks at the endpoints and
// merging the lines either side of any removed Break. Markers stay
// consistent: every Break removed also removes exactly the LineStart that
// followed it, so linestart_count and break_count shrink together.
func (tb *TextBuffer) DeleteCharRange(r0, c0, r1, c1 uint32) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	lo, err := tb.locateLocked(r0, c0)
	if err != nil {
		return err
	}
	hi, err := tb.locateLocked(r1, c1)
	if err != nil {
		return err
	}
	if lo == hi {
		return nil
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	lo = tb.extendForTrailingLineLocked(lo, hi)

	r, err := tb.rope.DeleteRange(lo, hi)
	if err != nil {
		return outOfMemory("deleteRange")
	}
	tb.setRopeLocked(r)
	return nil
}

// extendForTrailingLineLocked widens a deletion that clears a whole line's
// content to also remove that line's own LineStart and the Break that
// introduced it, when the line is the document's last and has no
// terminator of its own. Without this, deleting all of a trailing,
// unterminated line's text would leave a dangling empty LineStart with no
// Break to pair it with, shrinking neither linestart_count nor
// break_count, and violating the markerCount(brk) ∈ {line_count,
// line_count−1} invariant's expectation that a full-line delete on the
// last line collapses that line away rather than leaving it empty.
func (tb *TextBuffer) extendForTrailingLineLocked(lo, hi uint32) uint32 {
	if hi != tb.rope.Count() || lo < 2 {
		return lo
	}
	ls, ok := tb.rope.Get(lo - 1)
	if !ok || ls.Kind != segment.KindLineStart {
		return lo
	}
	brk, ok := tb.rope.Get(lo - 2)
	if !ok || brk.Kind != segment.KindBreak {
		return lo
	}
	return lo - 2
}

// locateLocked resolves a logical (row,col) position to the absolute item
// index at which an insertion or deletion boundary falls, splitting the
// Text chunk straddling col in place when needed. Column is clamped to the
// line's cluster count. Callers must hold tb.mu for writing.
func (tb *TextBuffer) locateLocked(row, col uint32) (uint32, error) {
	lsIdx, _, ok := tb.rope.GetMarker(segment.MarkerLineStart, row)
	if !ok {
		return 0, outOfBounds("locate")
	}

	var (
		charsBefore uint32
		result      uint32
		found       bool
		last        = lsIdx + 1
	)

	tb.rope.WalkFrom(lsIdx+1, func(item segment.Segment, i uint32) rope.WalkerResult {
		if item.Kind != segment.KindText {
			result = i
			found = true
			return rope.WalkerResult{Stop: true}
		}
		n := item.Chunk.Chars
		if col > charsBefore+n {
			charsBefore += n
			last = i + 1
			return rope.WalkerResult{}
		}
		result, found = tb.resolveWithinChunkLocked(i, item.Chunk, col-charsBefore)
		return rope.WalkerResult{Stop: true}
	})

	if !found {
		result = last
	}
	return result, nil
}

// resolveWithinChunkLocked returns the item index at which col (relative
// to chunk's own start) falls, splitting chunk in place if col lands
// strictly inside it.
func (tb *TextBuffer) resolveWithinChunkLocked(idx uint32, chunk segment.TextChunk, localCol uint32) (uint32, bool) {
	if localCol == 0 {
		return idx, true
	}
	if localCol == chunk.Chars {
		return idx + 1, true
	}

	spans := tb.clusterSpans(chunk.MemID, chunk.ByteStart, chunk.ByteEnd)
	if int(localCol) >= len(spans) {
		return idx + 1, true
	}
	splitByte := spans[localCol].ByteStart

	var segs []segment.Segment
	if left := tb.makeChunkLocked(chunk.MemID, chunk.ByteStart, splitByte, chunk.Style); left.ByteEnd > left.ByteStart {
		segs = append(segs, segment.Text(left))
	}
	insertAt := idx + uint32(len(segs))
	if right := tb.makeChunkLocked(chunk.MemID, splitByte, chunk.ByteEnd, chunk.Style); right.ByteEnd > right.ByteStart {
		segs = append(segs, segment.Text(right))
	}

	r, err := tb.rope.DeleteRange(idx, idx+1)
	if err != nil {
		return idx, true
	}
	r, err = r.InsertSlice(idx, segs)
	if err != nil {
		return idx, true
	}
	tb.setRopeLocked(r)
	return insertAt, true
}

// makeChunkLocked builds a TextChunk over [start,end) of memID, recomputing
// width/chars/flags from the live registry bytes.
func (tb *TextBuffer) makeChunkLocked(memID uint8, start, end uint32, st *style.Style) segment.TextChunk {
	if end <= start {
		return segment.TextChunk{MemID: memID, ByteStart: start, ByteEnd: start, Style: st}
	}
	width, chars := measure(string(rawSlice(tb, memID, int(start), int(end))), tb.widthMethod, tb.tabWidth)
	return segment.TextChunk{
		MemID:     memID,
		ByteStart: start,
		ByteEnd:   end,
		Width:     width,
		Chars:     chars,
		Flags:     asciiFlags(tb, memID, int(start), int(end)),
		Style:     st,
	}
}

// buildInsertionSegmentsLocked registers text as a new owned mem buffer and
// scans it into a segment run suitable for splicing mid-line: the first
// fragment carries no leading LineStart (it continues whatever line the
// insertion point was already on), and every fragment after an embedded
// line terminator opens a new line with Break+LineStart, exactly mirroring
// buildPlainSegments's CRLF/CR/LF handling.
func (tb *TextBuffer) buildInsertionSegmentsLocked(raw []byte) ([]segment.Segment, error) {
	memID, err := tb.registerMemBufferLocked(raw, true)
	if err != nil {
		return nil, err
	}

	var segs []segment.Segment
	first := true
	emit := func(start, end int) {
		if !first {
			segs = append(segs, segment.Break(), segment.LineStart())
		}
		first = false
		if end > start {
			segs = append(segs, segment.Text(tb.makeChunkLocked(memID, uint32(start), uint32(end), nil)))
		}
	}

	lineStart, i := 0, 0
	for i < len(raw) {
		switch raw[i] {
		case '\n':
			emit(lineStart, i)
			i++
			lineStart = i
		case '\r':
			emit(lineStart, i)
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i += 2
			} else {
				i++
			}
			lineStart = i
		default:
			i++
		}
	}
	emit(lineStart, len(raw))
	return segs, nil
}

// advanceLocked computes the cursor's new (row,col) after inserting text
// at (row,col): a newline-free insertion advances col by its cluster
// count; an insertion containing line terminators moves the cursor onto
// the last produced fragment's line, at that fragment's cluster count.
func (tb *TextBuffer) advanceLocked(row, col uint32, text []byte) (uint32, uint32) {
	lines := 0
	lastStart := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines++
			lastStart = i + 1
		case '\r':
			lines++
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lastStart = i + 1
		}
	}
	_, lastChars := measure(string(text[lastStart:]), tb.widthMethod, tb.tabWidth)
	if lines == 0 {
		return row, col + lastChars
	}
	return row + uint32(lines), lastChars
}
