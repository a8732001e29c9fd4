package view

import (
	"unicode/utf8"

	"github.com/dshills/textengine/internal/rope"
	"github.com/dshills/textengine/internal/segment"
	"github.com/dshills/textengine/internal/style"
)

// atom is one grapheme cluster's placement data for the wrap algorithm: a
// byte span in a single registered buffer, its display width, the style
// it renders with, and whether a word-wrap boundary falls immediately
// after it.
type atom struct {
	memID              uint8
	byteStart, byteEnd uint32
	width              uint32
	style              *style.Style
	breakAfter         bool
}

// wordBoundaryRunes is the set of characters after which WrapWord prefers
// to break, per the external interface's "transitions into punctuation or
// whitespace" wording.
var wordBoundaryRunes = map[rune]bool{
	' ': true, '\t': true, '-': true, '/': true,
	'[': true, ']': true, '(': true, ')': true, '{': true, '}': true,
	',': true, '.': true, ';': true, ':': true, '?': true, '!': true,
}

// rebuild recomputes every virtual line for the buffer's current content
// and the view's current wrap settings.
func (v *View) rebuild() []VirtualLine {
	n := v.tb.GetLineCount()
	var out []VirtualLine
	var charOffset uint32

	for row := uint32(0); row < n; row++ {
		atoms, _ := v.atomsForLine(row)
		lines, counts := wrapAtoms(row, atoms, v.wrapMode, v.wrapWidth)
		for i := range lines {
			lines[i].CharOffset = charOffset
			charOffset += counts[i]
		}
		out = append(out, lines...)
		if row+1 < n {
			charOffset++ // the logical break between this line and the next
		}
	}
	return out
}

// atomsForLine clusters logical line row's Text segments into atoms, in
// order, along with the line's total grapheme-cluster count.
func (v *View) atomsForLine(row uint32) ([]atom, uint32) {
	r := v.tb.Rope()
	idx, _, ok := r.GetMarker(segment.MarkerLineStart, row)
	if !ok {
		return nil, 0
	}

	type chunkInfo struct {
		memID              uint8
		byteStart, byteEnd uint32
		style              *style.Style
	}
	var chunks []chunkInfo
	r.WalkFrom(idx+1, func(item segment.Segment, _ uint32) rope.WalkerResult {
		if item.Kind == segment.KindLineStart {
			return rope.WalkerResult{Stop: true}
		}
		if item.Kind == segment.KindText {
			chunks = append(chunks, chunkInfo{
				memID:     item.Chunk.MemID,
				byteStart: item.Chunk.ByteStart,
				byteEnd:   item.Chunk.ByteEnd,
				style:     item.Chunk.Style,
			})
		}
		return rope.WalkerResult{}
	})

	var atoms []atom
	var chars uint32
	for _, c := range chunks {
		spans := v.tb.ClusterSpans(c.memID, c.byteStart, c.byteEnd)
		buf, _ := v.tb.GetMemBuffer(c.memID)
		for _, span := range spans {
			lead, _ := utf8.DecodeRune(buf[span.ByteStart:span.ByteEnd])
			atoms = append(atoms, atom{
				memID:      c.memID,
				byteStart:  span.ByteStart,
				byteEnd:    span.ByteEnd,
				width:      span.Width,
				style:      c.style,
				breakAfter: wordBoundaryRunes[lead],
			})
			chars++
		}
	}
	return atoms, chars
}

// wrapAtoms splits one logical line's atoms into virtual lines under mode
// and width, returning each virtual line alongside its atom (= grapheme
// cluster) count. CharOffset fields are left zero; the caller fills them
// in using the returned counts.
func wrapAtoms(row uint32, atoms []atom, mode WrapMode, width *uint32) ([]VirtualLine, []uint32) {
	if mode == WrapNone || width == nil || *width == 0 || len(atoms) == 0 {
		return []VirtualLine{{SourceLineIdx: row, Chunks: groupAtoms(row, atoms), Width: totalWidth(atoms)}},
			[]uint32{uint32(len(atoms))}
	}
	limit := *width

	var lines []VirtualLine
	var counts []uint32
	var cur []atom
	var curWidth uint32

	flush := func() {
		lines = append(lines, VirtualLine{SourceLineIdx: row, Chunks: groupAtoms(row, cur), Width: curWidth})
		counts = append(counts, uint32(len(cur)))
		cur = nil
		curWidth = 0
	}

	for _, a := range atoms {
		if curWidth+a.width > limit && len(cur) > 0 {
			if mode == WrapWord {
				if brk := lastBreakableIndex(cur); brk >= 0 {
					tail := append([]atom{}, cur[brk+1:]...)
					cur = cur[:brk+1]
					curWidth = totalWidth(cur)
					flush()
					cur = tail
					curWidth = totalWidth(tail)
				} else {
					flush()
				}
			} else {
				flush()
			}
		}
		cur = append(cur, a)
		curWidth += a.width
		// A single grapheme wider than the limit is never split: it gets
		// its own virtual line regardless of overflow.
		if a.width > limit {
			flush()
		}
	}
	if len(cur) > 0 || len(lines) == 0 {
		flush()
	}
	return lines, counts
}

func lastBreakableIndex(atoms []atom) int {
	for i := len(atoms) - 1; i >= 0; i-- {
		if atoms[i].breakAfter {
			return i
		}
	}
	return -1
}

func totalWidth(atoms []atom) uint32 {
	var w uint32
	for _, a := range atoms {
		w += a.width
	}
	return w
}

// groupAtoms merges consecutive atoms sharing a mem buffer, contiguous
// bytes, and the same style pointer into single VirtualChunks.
func groupAtoms(row uint32, atoms []atom) []VirtualChunk {
	var out []VirtualChunk
	for _, a := range atoms {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.MemID == a.memID && last.ByteEnd == a.byteStart && last.Style == a.style {
				last.ByteEnd = a.byteEnd
				last.Width += a.width
				last.Chars++
				continue
			}
		}
		out = append(out, VirtualChunk{
			MemID:      a.memID,
			ByteStart:  a.byteStart,
			ByteEnd:    a.byteEnd,
			Style:      a.style,
			Width:      a.width,
			Chars:      1,
			SourceLine: row,
		})
	}
	return out
}
