package view

import (
	"io"

	"github.com/dshills/textengine/internal/rope"
	"github.com/dshills/textengine/internal/segment"
	"github.com/dshills/textengine/internal/style"
)

// SetLocalSelection sets the selection from virtual (row,col) endpoints,
// resolving them to absolute char offsets via the current virtual-line
// layout. A zero-width selection, or any selection on an empty document,
// collapses to "no selection".
func (v *View) SetLocalSelection(r0, c0, r1, c1 uint32, fg, bg *style.RGBA) {
	lines := v.GetVirtualLines()
	start, ok0 := localToCharOffset(lines, r0, c0)
	end, ok1 := localToCharOffset(lines, r1, c1)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !ok0 || !ok1 || start == end || len(lines) == 0 {
		v.selection = selectionState{}
		return
	}
	if start > end {
		start, end = end, start
	}
	v.selection = selectionState{has: true, start: start, end: end, fg: fg, bg: bg}
}

// localToCharOffset resolves a virtual (row,col) pair to an absolute char
// offset, clamping col to the virtual line's cluster count.
func localToCharOffset(lines []VirtualLine, row, col uint32) (uint32, bool) {
	if int(row) >= len(lines) {
		return 0, false
	}
	vl := lines[row]
	maxCol := virtualLineChars(vl)
	if col > maxCol {
		col = maxCol
	}
	return vl.CharOffset + col, true
}

func virtualLineChars(vl VirtualLine) uint32 {
	var n uint32
	for _, c := range vl.Chunks {
		n += c.Chars
	}
	return n
}

// ResetLocalSelection clears the view's selection.
func (v *View) ResetLocalSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = selectionState{}
}

// SetSelection sets the selection directly from absolute char offsets. A
// zero-width range clears the selection.
func (v *View) SetSelection(start, end uint32, fg, bg *style.RGBA) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if start == end {
		v.selection = selectionState{}
		return
	}
	if start > end {
		start, end = end, start
	}
	v.selection = selectionState{has: true, start: start, end: end, fg: fg, bg: bg}
}

// PackSelectionInfo returns the selection packed as
// (start_char_offset << 32) | end_char_offset, or the all-ones sentinel if
// there is no active selection.
func (v *View) PackSelectionInfo() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.selection.has {
		return noSelection
	}
	return uint64(v.selection.start)<<32 | uint64(v.selection.end)
}

// GetSelectedTextIntoBuffer writes the UTF-8 bytes of the current
// selection to w, walking the underlying segment rope directly (so wrap
// boundaries, which are a view-layer artifact, never appear as newlines —
// only logical Break segments do). It returns the number of bytes written.
func (v *View) GetSelectedTextIntoBuffer(w io.Writer) (int, error) {
	v.mu.RLock()
	sel := v.selection
	v.mu.RUnlock()
	if !sel.has {
		return 0, nil
	}

	written := 0
	var charPos uint32
	var werr error

	v.tb.Rope().Walk(func(item segment.Segment, _ uint32) rope.WalkerResult {
		switch item.Kind {
		case segment.KindBreak:
			if charPos >= sel.start && charPos < sel.end {
				n, err := w.Write([]byte("\n"))
				written += n
				if err != nil {
					werr = err
					return rope.WalkerResult{Stop: true}
				}
			}
			charPos++
		case segment.KindText:
			spans := v.tb.ClusterSpans(item.Chunk.MemID, item.Chunk.ByteStart, item.Chunk.ByteEnd)
			if len(spans) == 0 {
				break
			}
			buf, ok := v.tb.GetMemBuffer(item.Chunk.MemID)
			if !ok {
				charPos += uint32(len(spans))
				break
			}
			for _, sp := range spans {
				if charPos >= sel.start && charPos < sel.end {
					n, err := w.Write(buf[sp.ByteStart:sp.ByteEnd])
					written += n
					if err != nil {
						werr = err
						return rope.WalkerResult{Stop: true}
					}
				}
				charPos++
				if charPos >= sel.end {
					return rope.WalkerResult{Stop: true}
				}
			}
		}
		if charPos >= sel.end {
			return rope.WalkerResult{Stop: true}
		}
		return rope.WalkerResult{}
	})

	return written, werr
}
