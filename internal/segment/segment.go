// Package segment defines the leaf item type stored in a TextBuffer's
// rope.Rope[Segment, Summary]: a tagged union of LineStart, Break, and
// Text(TextChunk), plus the MemRegistry of source byte buffers text chunks
// reference.
package segment

import "github.com/dshills/textengine/internal/style"

// Kind discriminates the three leaf shapes a Segment can take. A tagged
// union is used here rather than an interface: leaves are the hottest path
// in the whole engine and a fixed-size struct avoids the indirection and
// allocation a dynamically dispatched leaf type would cost.
type Kind uint8

const (
	KindLineStart Kind = iota
	KindBreak
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindLineStart:
		return "line-start"
	case KindBreak:
		return "break"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Flag bits for TextChunk.Flags.
const (
	FlagASCIIOnly uint8 = 1 << iota
)

// TextChunk is a contiguous run of bytes inside one registered memory
// buffer. Width is the chunk's precomputed display width under the active
// width method; Chars is its precomputed grapheme-cluster count (an
// implementation addition beyond the wire fields so the rope's Custom
// metric can be folded in O(1) without re-scanning bytes on every Add —
// both are computed once, when the chunk is built).
type TextChunk struct {
	MemID     uint8
	ByteStart uint32
	ByteEnd   uint32
	Width     uint32
	Chars     uint32
	Flags     uint8
	Style     *style.Style // nil for plain (non-styled) text
}

func (c TextChunk) byteLen() uint32 { return c.ByteEnd - c.ByteStart }

func (c TextChunk) isEmpty() bool { return c.ByteStart >= c.ByteEnd }

// Segment is one rope leaf in the text rope.
type Segment struct {
	Kind  Kind
	Chunk TextChunk // meaningful only when Kind == KindText
}

// LineStart returns a zero-weight line-start marker segment.
func LineStart() Segment { return Segment{Kind: KindLineStart} }

// Break returns a segment representing a single logical newline,
// regardless of whether the source used \n, \r\n, or \r.
func Break() Segment { return Segment{Kind: KindBreak} }

// Text returns a segment wrapping a text chunk.
func Text(c TextChunk) Segment { return Segment{Kind: KindText, Chunk: c} }

// IsEmpty reports whether the segment is the "gap" sentinel the rope
// elides on insert: a zero-length text chunk. LineStart and Break always
// carry marker weight and are never empty.
func (s Segment) IsEmpty() bool {
	return s.Kind == KindText && s.Chunk.isEmpty()
}

// Summary folds the segment into the rope's Custom metric.
func (s Segment) Summary() Summary {
	switch s.Kind {
	case KindLineStart:
		return Summary{LineStarts: 1}
	case KindBreak:
		return Summary{Chars: 1, Breaks: 1}
	case KindText:
		return Summary{Width: s.Chunk.Width, Chars: s.Chunk.Chars}
	default:
		return Summary{}
	}
}
