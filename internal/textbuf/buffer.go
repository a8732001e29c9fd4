package textbuf

import (
	"io"
	"sync"

	"github.com/dshills/textengine/internal/grapheme"
	"github.com/dshills/textengine/internal/rope"
	"github.com/dshills/textengine/internal/segment"
	"github.com/dshills/textengine/internal/style"
)

const bom = "﻿"

// StyledChunk is one run of the setStyledText input: bytes plus an optional
// style record, matching §6's external interface exactly.
type StyledChunk struct {
	Bytes []byte
	Style *style.Style
}

// Highlight is a style span applied over a char range, independent of the
// syntax style carried by setStyledText chunks.
type Highlight struct {
	Start, End uint32
	StyleID    uint32
}

// Option configures a TextBuffer at construction.
type Option func(*TextBuffer)

// WithTabWidth sets the buffer's tab width (used by GetGraphemeWidthAt).
func WithTabWidth(w uint32) Option {
	return func(tb *TextBuffer) {
		if w > 0 {
			tb.tabWidth = w
		}
	}
}

// WithWidthMethod selects grapheme clustering and measurement behaviour.
func WithWidthMethod(m WidthMethod) Option {
	return func(tb *TextBuffer) { tb.widthMethod = m }
}

// TextBuffer owns the segmented rope, its memory registry, a shared
// grapheme pool, the per-view dirty set, and per-line highlight spans.
// All methods are safe for concurrent use by a single owning goroutine and
// readers, matching the teacher's RWMutex-guarded Buffer.
type TextBuffer struct {
	mu sync.RWMutex

	rope     segment.Rope
	registry *segment.MemRegistry
	pool     *grapheme.Pool

	widthMethod WidthMethod
	tabWidth    uint32

	views       map[uint32]bool // id -> dirty
	freeViewIDs []uint32
	nextViewID  uint32

	highlights   map[uint32][]Highlight // line -> spans
	syntaxStyles map[uint32]style.Style // style_id -> style
}

// New constructs an empty TextBuffer sharing pool for grapheme interning.
// pool may be nil: the buffer only stores it and returns it from Pool();
// GetGraphemeWidthAt and friends work directly off registry bytes, and
// neither the buffer nor the view layer interns anything in it.
func New(pool *grapheme.Pool, opts ...Option) *TextBuffer {
	tb := &TextBuffer{
		rope:         segment.NewRope(),
		registry:     segment.NewMemRegistry(),
		pool:         pool,
		widthMethod:  WidthUnicode,
		tabWidth:     4,
		views:        make(map[uint32]bool),
		highlights:   make(map[uint32][]Highlight),
		syntaxStyles: make(map[uint32]style.Style),
	}
	for _, opt := range opts {
		opt(tb)
	}
	return tb
}

// Rope exposes the underlying segment rope for the view and edit layers.
func (tb *TextBuffer) Rope() segment.Rope { return tb.rope }

// Registry exposes the memory registry for the view and edit layers.
func (tb *TextBuffer) Registry() *segment.MemRegistry { return tb.registry }

// Pool returns the shared grapheme pool, or nil if none was configured.
func (tb *TextBuffer) Pool() *grapheme.Pool { return tb.pool }

// WidthMethod returns the active grapheme clustering/width mode.
func (tb *TextBuffer) WidthMethod() WidthMethod { return tb.widthMethod }

// TabWidth returns the configured tab display width.
func (tb *TextBuffer) TabWidth() uint32 { return tb.tabWidth }

// SetTabWidth changes the tab display width used by grapheme-width queries.
func (tb *TextBuffer) SetTabWidth(w uint32) {
	if w == 0 {
		return
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tabWidth = w
	tb.markViewsDirtyLocked()
}

// SetSyntaxStyle records the style a highlight span's style_id resolves to.
func (tb *TextBuffer) SetSyntaxStyle(styleID uint32, st style.Style) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.syntaxStyles[styleID] = st
}

// ResolveSyntaxStyle returns the style registered under styleID, if any.
func (tb *TextBuffer) ResolveSyntaxStyle(styleID uint32) (style.Style, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	st, ok := tb.syntaxStyles[styleID]
	return st, ok
}

// setRopeLocked replaces the rope and marks every view dirty. Callers must
// hold tb.mu for writing.
func (tb *TextBuffer) setRopeLocked(r segment.Rope) {
	tb.rope = r
	tb.markViewsDirtyLocked()
}

// SetText replaces the buffer's content with s, recognising \n, \r\n, and
// \r as a single logical break and emitting one LineStart + Text? + Break
// per line, per §4.3. A leading UTF-8 BOM is stripped before segmenting.
// The buffer is cleared first (Clear semantics: registry entries preserved).
func (tb *TextBuffer) SetText(s string) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.clearLocked()

	s = stripBOM(s)
	raw := []byte(s)
	segs, err := tb.buildPlainSegments(raw)
	if err != nil {
		return err
	}
	tb.setRopeLocked(segment.FromSegments(segs))
	return nil
}

func stripBOM(s string) string {
	if len(s) >= 3 && s[0:3] == bom {
		return s[3:]
	}
	return s
}

// buildPlainSegments registers raw as one owned mem buffer and scans it
// into LineStart/Text/Break segments.
func (tb *TextBuffer) buildPlainSegments(raw []byte) ([]segment.Segment, error) {
	memID, err := tb.registerMemBufferLocked(raw, true)
	if err != nil {
		return nil, err
	}

	var segs []segment.Segment
	lineStart := 0
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '\n':
			segs = append(segs, tb.lineSegments(memID, lineStart, i)...)
			segs = append(segs, segment.Break())
			i++
			lineStart = i
		case '\r':
			segs = append(segs, tb.lineSegments(memID, lineStart, i)...)
			segs = append(segs, segment.Break())
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
	segs = append(segs, tb.lineSegments(memID, lineStart, len(raw))...)
	return segs, nil
}

// lineSegments builds the LineStart (+Text, if non-empty) pair for the
// line [start,end) of the registered buffer.
func (tb *TextBuffer) lineSegments(memID uint8, start, end int) []segment.Segment {
	out := []segment.Segment{segment.LineStart()}
	if end == start {
		return out
	}
	width, chars := measure(string(rawSlice(tb, memID, start, end)), tb.widthMethod, tb.tabWidth)
	chunk := segment.TextChunk{
		MemID:     memID,
		ByteStart: uint32(start),
		ByteEnd:   uint32(end),
		Width:     width,
		Chars:     chars,
		Flags:     asciiFlags(tb, memID, start, end),
	}
	return append(out, segment.Text(chunk))
}

func rawSlice(tb *TextBuffer, memID uint8, start, end int) []byte {
	buf, _ := tb.registry.Get(memID)
	return buf[start:end]
}

func asciiFlags(tb *TextBuffer, memID uint8, start, end int) uint8 {
	for _, b := range rawSlice(tb, memID, start, end) {
		if b >= 0x80 {
			return 0
		}
	}
	return segment.FlagASCIIOnly
}

// SetStyledText replaces content with one Text segment per chunk, each
// carrying its style record. Lines are not inferred from newlines here:
// each chunk is its own segment run, with a single LineStart emitted up
// front (styled ingest is intended for single-line styled widgets; multi-
// line styled content should split chunks at its own line boundaries and
// call AddLine per resulting line, mirroring registerMemBuffer/addLine).
func (tb *TextBuffer) SetStyledText(chunks []StyledChunk) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.clearLocked()

	segs := []segment.Segment{segment.LineStart()}
	for _, c := range chunks {
		if len(c.Bytes) == 0 {
			continue
		}
		memID, err := tb.registerMemBufferLocked(c.Bytes, true)
		if err != nil {
			return err
		}
		width, chars := measure(string(c.Bytes), tb.widthMethod, tb.tabWidth)
		flags := uint8(0)
		if isASCII(c.Bytes) {
			flags = segment.FlagASCIIOnly
		}
		segs = append(segs, segment.Text(segment.TextChunk{
			MemID:     memID,
			ByteStart: 0,
			ByteEnd:   uint32(len(c.Bytes)),
			Width:     width,
			Chars:     chars,
			Flags:     flags,
			Style:     c.Style,
		}))
	}
	tb.setRopeLocked(segment.FromSegments(segs))
	return nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// RegisterMemBuffer stores bytes under the first free mem_id.
func (tb *TextBuffer) RegisterMemBuffer(bytes []byte, owned bool) (uint8, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.registerMemBufferLocked(bytes, owned)
}

func (tb *TextBuffer) registerMemBufferLocked(bytes []byte, owned bool) (uint8, error) {
	id, err := tb.registry.Register(bytes, owned)
	if err != nil {
		return 0, outOfMemory("registerMemBuffer")
	}
	return id, nil
}

// AddLine appends a new logical line built from a slice of a registered
// buffer. Empty slices are allowed.
func (tb *TextBuffer) AddLine(memID uint8, byteStart, byteEnd uint32) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if !tb.registry.Valid(memID) {
		return invalidMemID("addLine")
	}
	segs := tb.lineSegments(memID, int(byteStart), int(byteEnd))
	r, err := tb.rope.InsertSlice(tb.rope.Count(), segs)
	if err != nil {
		return outOfMemory("addLine")
	}
	tb.setRopeLocked(r)
	return nil
}

// GetMemBuffer returns the bytes registered under memID.
func (tb *TextBuffer) GetMemBuffer(memID uint8) ([]byte, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.registry.Get(memID)
}

// Clear empties the rope but preserves registry entries: previously issued
// mem_ids remain valid.
func (tb *TextBuffer) Clear() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.clearLocked()
}

func (tb *TextBuffer) clearLocked() {
	tb.setRopeLocked(segment.NewRope())
	tb.highlights = make(map[uint32][]Highlight)
}

// Reset empties the rope, discards the registry, and marks every view
// dirty: previously issued mem_ids are invalidated.
func (tb *TextBuffer) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.registry.Reset()
	tb.clearLocked()
}

// GetLength returns the total logical character count (the Chars metric,
// which counts grapheme clusters plus one per break).
func (tb *TextBuffer) GetLength() uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.rope.Summary().Chars
}

// GetLineCount returns the number of logical lines (== markerCount(linestart)).
func (tb *TextBuffer) GetLineCount() uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.rope.MarkerCount(segment.MarkerLineStart)
}

// MarkerCount exposes the rope's marker cache directly, for tests and
// callers that want brk/linestart counts without going through GetLineCount.
func (tb *TextBuffer) MarkerCount(kind rope.MarkerKind) uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.rope.MarkerCount(kind)
}

// GetByteSize returns the total number of source bytes referenced by Text
// segments (markers contribute nothing).
func (tb *TextBuffer) GetByteSize() uint32 {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	var total uint32
	tb.rope.Walk(func(item segment.Segment, _ uint32) rope.WalkerResult {
		if item.Kind == segment.KindText {
			total += item.Chunk.ByteEnd - item.Chunk.ByteStart
		}
		return rope.WalkerResult{}
	})
	return total
}

// GetPlainTextIntoBuffer writes the buffer's plain-text content to w,
// normalising every break to "\n" regardless of source line-ending style,
// and returns the number of bytes written.
func (tb *TextBuffer) GetPlainTextIntoBuffer(w io.Writer) (int, error) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	written := 0
	var walkErr error
	tb.rope.Walk(func(item segment.Segment, _ uint32) rope.WalkerResult {
		switch item.Kind {
		case segment.KindText:
			buf, ok := tb.registry.Get(item.Chunk.MemID)
			if !ok {
				return rope.WalkerResult{}
			}
			n, err := w.Write(buf[item.Chunk.ByteStart:item.Chunk.ByteEnd])
			written += n
			if err != nil {
				walkErr = err
				return rope.WalkerResult{Stop: true}
			}
		case segment.KindBreak:
			n, err := w.Write([]byte("\n"))
			written += n
			if err != nil {
				walkErr = err
				return rope.WalkerResult{Stop: true}
			}
		}
		return rope.WalkerResult{}
	})
	return written, walkErr
}

// AddHighlightByCharRange associates a highlight span with every line in
// [lineFrom,lineTo] (inclusive).
func (tb *TextBuffer) AddHighlightByCharRange(start, end, lineFrom, lineTo, styleID uint32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	h := Highlight{Start: start, End: end, StyleID: styleID}
	for line := lineFrom; line <= lineTo; line++ {
		tb.highlights[line] = append(tb.highlights[line], h)
	}
}

// GetLineHighlights returns the highlight spans registered against line.
func (tb *TextBuffer) GetLineHighlights(line uint32) []Highlight {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.highlights[line]
}

// RegisterView allocates a view id, reusing a freed id when available.
func (tb *TextBuffer) RegisterView() uint32 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	var id uint32
	if n := len(tb.freeViewIDs); n > 0 {
		id = tb.freeViewIDs[n-1]
		tb.freeViewIDs = tb.freeViewIDs[:n-1]
	} else {
		id = tb.nextViewID
		tb.nextViewID++
	}
	tb.views[id] = true
	return id
}

// UnregisterView releases id for reuse by a future RegisterView call.
func (tb *TextBuffer) UnregisterView(id uint32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, ok := tb.views[id]; !ok {
		return
	}
	delete(tb.views, id)
	tb.freeViewIDs = append(tb.freeViewIDs, id)
}

// IsViewDirty reports whether id's virtual lines need recomputing.
func (tb *TextBuffer) IsViewDirty(id uint32) bool {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.views[id]
}

// ClearViewDirty marks id's virtual lines as up to date.
func (tb *TextBuffer) ClearViewDirty(id uint32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, ok := tb.views[id]; ok {
		tb.views[id] = false
	}
}

// MarkViewsDirty marks every registered view dirty. Called automatically
// by every content-mutating operation.
func (tb *TextBuffer) MarkViewsDirty() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.markViewsDirtyLocked()
}

func (tb *TextBuffer) markViewsDirtyLocked() {
	for id := range tb.views {
		tb.views[id] = true
	}
}
