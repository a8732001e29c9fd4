package view

import (
	"sync"

	"github.com/dshills/textengine/internal/style"
	"github.com/dshills/textengine/internal/textbuf"
)

// WrapMode selects how a logical line too wide for the view's wrap width
// is split into virtual lines.
type WrapMode uint8

const (
	// WrapNone emits one virtual line per logical line, regardless of width.
	WrapNone WrapMode = iota
	// WrapChar wraps at the first cluster that would exceed the wrap width.
	WrapChar
	// WrapWord prefers to wrap at a word boundary, falling back to WrapChar
	// when none exists within the current line.
	WrapWord
)

// VirtualChunk is a contiguous, same-style run of source bytes placed on
// one virtual line.
type VirtualChunk struct {
	MemID              uint8
	ByteStart, ByteEnd uint32
	Style              *style.Style
	Width              uint32
	Chars              uint32
	SourceLine         uint32
}

// VirtualLine is one wrap-segmented row of rendered content.
type VirtualLine struct {
	SourceLineIdx uint32
	Chunks        []VirtualChunk
	Width         uint32
	CharOffset    uint32
}

// View is a client's window onto a TextBuffer: wrap configuration, the
// resulting virtual-line list, and that client's selection.
type View struct {
	mu sync.RWMutex

	tb *textbuf.TextBuffer
	id uint32

	wrapWidth *uint32
	wrapMode  WrapMode

	virtualLines []VirtualLine
	needsRebuild bool

	selection selectionState
}

type selectionState struct {
	has        bool
	start, end uint32
	fg, bg     *style.RGBA
}

// noSelection is the packed sentinel for "no selection", per the external
// interface's u64 wire format.
const noSelection = ^uint64(0)

// New registers a new View on tb.
func New(tb *textbuf.TextBuffer) *View {
	v := &View{
		tb:           tb,
		id:           tb.RegisterView(),
		wrapMode:     WrapNone,
		needsRebuild: true,
	}
	return v
}

// Close unregisters the view from its TextBuffer, freeing its id for reuse.
func (v *View) Close() {
	v.tb.UnregisterView(v.id)
}

// SetWrapWidth sets the wrap width in display cells, or nil to disable
// width-based wrapping (a WrapChar/WrapWord mode with a nil width behaves
// like WrapNone).
func (v *View) SetWrapWidth(width *uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wrapWidth = width
	v.needsRebuild = true
}

// SetWrapMode selects the wrap policy.
func (v *View) SetWrapMode(mode WrapMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wrapMode = mode
	v.needsRebuild = true
}

// GetVirtualLineCount returns the number of virtual lines after the most
// recent rebuild, recomputing first if the buffer or wrap settings changed.
func (v *View) GetVirtualLineCount() uint32 {
	v.ensureBuilt()
	v.mu.RLock()
	defer v.mu.RUnlock()
	return uint32(len(v.virtualLines))
}

// GetVirtualLines returns the current virtual-line list, recomputing first
// if stale. The returned slice is owned by the view; callers must not
// mutate it.
func (v *View) GetVirtualLines() []VirtualLine {
	v.ensureBuilt()
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.virtualLines
}

// ensureBuilt recomputes the virtual-line list if the underlying buffer
// content changed (tb.IsViewDirty) or the view's own wrap settings changed
// since the last rebuild.
func (v *View) ensureBuilt() {
	v.mu.Lock()
	dirty := v.needsRebuild || v.tb.IsViewDirty(v.id)
	v.mu.Unlock()
	if !dirty {
		return
	}

	lines := v.rebuild()

	v.mu.Lock()
	v.virtualLines = lines
	v.needsRebuild = false
	v.mu.Unlock()
	v.tb.ClearViewDirty(v.id)
}
