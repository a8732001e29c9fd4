// Package editbuffer layers cursor tracking, positional text mutation, and
// placeholder display over a shared textbuf.TextBuffer, matching the
// teacher's cursor+buffer split (engine/cursor.Cursor atop
// engine/buffer.Buffer's Insert/Delete) generalized to logical (row,col)
// coordinates instead of byte offsets.
package editbuffer

import (
	"io"
	"sync"

	"github.com/dshills/textengine/internal/style"
	"github.com/dshills/textengine/internal/textbuf"
)

// Cursor is an insertion point in logical (row,col) coordinates, where col
// counts grapheme clusters rather than bytes or display cells.
type Cursor struct {
	Row, Col uint32
}

// EditBuffer owns a cursor and an optional placeholder over a shared
// TextBuffer. It never owns the TextBuffer itself: multiple EditBuffers (or
// an EditBuffer plus read-only Views) may address the same buffer.
type EditBuffer struct {
	mu sync.RWMutex

	tb     *textbuf.TextBuffer
	cursor Cursor

	placeholder       []byte
	placeholderColor  *style.RGBA
	placeholderActive bool
}

// New constructs an EditBuffer over tb, cursor at the origin.
func New(tb *textbuf.TextBuffer) *EditBuffer {
	e := &EditBuffer{tb: tb}
	e.syncPlaceholderLocked()
	return e
}

// Close releases any resources the edit buffer itself owns. It holds no
// view ids or mem-registry entries of its own, so this is presently a
// no-op; it exists to round out the init/deinit pair the external
// interface names.
func (e *EditBuffer) Close() {}

// SetText replaces the buffer's content. When preserveCursor is false the
// cursor resets to (0,0); otherwise it is clamped to the new content's
// bounds via a round trip through CoordsToOffset/OffsetToCoords.
func (e *EditBuffer) SetText(text []byte, preserveCursor bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tb.SetText(string(text)); err != nil {
		return err
	}
	if preserveCursor {
		e.clampCursorLocked()
	} else {
		e.cursor = Cursor{}
	}
	e.syncPlaceholderLocked()
	return nil
}

// InsertText inserts text at the cursor, clearing any active placeholder
// first (a placeholder's bytes live in the shared buffer only for display;
// the first keystroke replaces them outright rather than appending after
// them), then advances the cursor past the inserted bytes.
func (e *EditBuffer) InsertText(text []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.placeholderActive {
		if err := e.tb.SetText(""); err != nil {
			return err
		}
		e.cursor = Cursor{}
		e.placeholderActive = false
	}

	row, col, err := e.tb.InsertCharsAt(e.cursor.Row, e.cursor.Col, text)
	if err != nil {
		return err
	}
	e.cursor = Cursor{Row: row, Col: col}
	e.syncPlaceholderLocked()
	return nil
}

// Backspace removes the grapheme cluster immediately before the cursor. At
// column 0 of a line after the first, it joins with the previous line,
// landing the cursor at that line's former width. At (0,0) it is a no-op.
func (e *EditBuffer) Backspace() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.cursor.Col > 0:
		if err := e.tb.DeleteCharRange(e.cursor.Row, e.cursor.Col-1, e.cursor.Row, e.cursor.Col); err != nil {
			return err
		}
		e.cursor.Col--
	case e.cursor.Row > 0:
		prevWidth := e.lineCharsLocked(e.cursor.Row - 1)
		if err := e.tb.DeleteCharRange(e.cursor.Row-1, prevWidth, e.cursor.Row, 0); err != nil {
			return err
		}
		e.cursor = Cursor{Row: e.cursor.Row - 1, Col: prevWidth}
	default:
		return nil
	}
	e.syncPlaceholderLocked()
	return nil
}

// DeleteRange removes the text between two logical positions (in either
// order), merging residual line fragments and updating line-start/break
// markers to match. The cursor lands at the range's earlier endpoint.
func (e *EditBuffer) DeleteRange(from, to Cursor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tb.DeleteCharRange(from.Row, from.Col, to.Row, to.Col); err != nil {
		return err
	}
	if to.Row < from.Row || (to.Row == from.Row && to.Col < from.Col) {
		from = to
	}
	e.cursor = from
	e.clampCursorLocked()
	e.syncPlaceholderLocked()
	return nil
}

// SetCursor moves the cursor to (row,col), clamped to the buffer's bounds.
func (e *EditBuffer) SetCursor(row, col uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = Cursor{Row: row, Col: col}
	e.clampCursorLocked()
}

// GetCursor returns the current cursor position.
func (e *EditBuffer) GetCursor() Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor
}

// GetText writes the live (non-placeholder) text to w. While a placeholder
// is active it writes nothing, even though the shared TextBuffer's own
// getPlainTextIntoBuffer reports the placeholder bytes for display.
func (e *EditBuffer) GetText(w io.Writer) (int, error) {
	e.mu.RLock()
	active := e.placeholderActive
	e.mu.RUnlock()
	if active {
		return 0, nil
	}
	return e.tb.GetPlainTextIntoBuffer(w)
}

// SetPlaceholder sets the bytes shown in the shared buffer when the edit
// buffer's live text is empty.
func (e *EditBuffer) SetPlaceholder(text []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placeholder = append([]byte(nil), text...)
	e.syncPlaceholderLocked()
}

// SetPlaceholderColor sets the color the placeholder renders with. It does
// not itself trigger a placeholder install/removal.
func (e *EditBuffer) SetPlaceholderColor(c style.RGBA) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placeholderColor = &c
}

// PlaceholderColor returns the configured placeholder color, if any.
func (e *EditBuffer) PlaceholderColor() (style.RGBA, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.placeholderColor == nil {
		return style.RGBA{}, false
	}
	return *e.placeholderColor, true
}

// syncPlaceholderLocked installs the placeholder into the shared buffer
// when the live text is empty and a placeholder is configured, or marks it
// inactive otherwise. Callers must hold e.mu for writing.
func (e *EditBuffer) syncPlaceholderLocked() {
	if e.tb.GetLength() > 0 || len(e.placeholder) == 0 {
		e.placeholderActive = false
		return
	}
	_ = e.tb.SetText(string(e.placeholder))
	e.cursor = Cursor{}
	e.placeholderActive = true
}

// clampCursorLocked pulls the cursor back inside the buffer's bounds via a
// round trip through CoordsToOffset/OffsetToCoords, reusing their existing
// column-clamping rather than re-deriving line widths here.
func (e *EditBuffer) clampCursorLocked() {
	off, ok := e.tb.CoordsToOffset(e.cursor.Row, e.cursor.Col)
	if !ok {
		n := e.tb.GetLineCount()
		if n == 0 {
			e.cursor = Cursor{}
			return
		}
		off, _ = e.tb.CoordsToOffset(n-1, e.cursor.Col)
	}
	if row, col, ok := e.tb.OffsetToCoords(off); ok {
		e.cursor = Cursor{Row: row, Col: col}
	}
}

// lineCharsLocked returns row's grapheme-cluster count via the same offset
// round trip clampCursorLocked uses: the offset one past row's last
// character, minus the offset of row's start, is exactly the cluster
// count the width-in-chars clamp in CoordsToOffset already computes.
func (e *EditBuffer) lineCharsLocked(row uint32) uint32 {
	start, ok := e.tb.CoordsToOffset(row, 0)
	if !ok {
		return 0
	}
	end, ok := e.tb.CoordsToOffset(row, ^uint32(0))
	if !ok {
		return 0
	}
	return end - start
}
