package segment

import "github.com/dshills/textengine/internal/rope"

// Marker kinds the rope's marker cache indexes.
const (
	MarkerBreak      rope.MarkerKind = iota + 1
	MarkerLineStart
)

// Summary is the Custom metric aggregated over a run of segments:
// width is the display-width contribution, chars counts grapheme clusters
// plus one per break, breaks and linestarts count their respective marker
// kinds.
type Summary struct {
	Width      uint32
	Chars      uint32
	Breaks     uint32
	LineStarts uint32
}

// Add combines two adjacent summaries, left-to-right.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Width:      s.Width + o.Width,
		Chars:      s.Chars + o.Chars,
		Breaks:     s.Breaks + o.Breaks,
		LineStarts: s.LineStarts + o.LineStarts,
	}
}

// MarkerCount implements rope.Summary for the fixed {brk, linestart} kind set.
func (s Summary) MarkerCount(kind rope.MarkerKind) uint32 {
	switch kind {
	case MarkerBreak:
		return s.Breaks
	case MarkerLineStart:
		return s.LineStarts
	default:
		return 0
	}
}

// Rope is the concrete rope type this package's items are stored in.
type Rope = rope.Rope[Segment, Summary]

// NewRope returns an empty segment rope.
func NewRope() Rope { return rope.New[Segment, Summary]() }

// FromSegments builds a rope containing segs, in order.
func FromSegments(segs []Segment) Rope { return rope.FromSlice[Segment, Summary](segs) }
