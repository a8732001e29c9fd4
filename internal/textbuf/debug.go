package textbuf

import (
	"strconv"

	"github.com/dshills/textengine/internal/rope"
	"github.com/dshills/textengine/internal/segment"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// DebugSnapshot renders the buffer's segment structure as pretty-printed
// JSON: line/break/char counts plus one array entry per rope leaf. It has
// no effect on buffer state and is not part of the EditBuffer/ViewEngine
// command surface; it exists for tests and cmd/textengdemo's -dump flag.
func (tb *TextBuffer) DebugSnapshot() string {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	out := []byte("{}")
	out, _ = sjson.SetBytes(out, "lineCount", tb.rope.MarkerCount(segment.MarkerLineStart))
	out, _ = sjson.SetBytes(out, "breakCount", tb.rope.MarkerCount(segment.MarkerBreak))
	out, _ = sjson.SetBytes(out, "charCount", tb.rope.Summary().Chars)
	out, _ = sjson.SetBytes(out, "width", tb.rope.Summary().Width)
	out, _ = sjson.SetBytes(out, "segments", []any{})

	i := 0
	tb.rope.Walk(func(item segment.Segment, _ uint32) rope.WalkerResult {
		prefix := "segments." + strconv.Itoa(i)
		out, _ = sjson.SetBytes(out, prefix+".kind", item.Kind.String())
		if item.Kind == segment.KindText {
			c := item.Chunk
			out, _ = sjson.SetBytes(out, prefix+".memId", c.MemID)
			out, _ = sjson.SetBytes(out, prefix+".byteStart", c.ByteStart)
			out, _ = sjson.SetBytes(out, prefix+".byteEnd", c.ByteEnd)
			out, _ = sjson.SetBytes(out, prefix+".width", c.Width)
			out, _ = sjson.SetBytes(out, prefix+".chars", c.Chars)
			out, _ = sjson.SetBytes(out, prefix+".ascii", c.Flags&segment.FlagASCIIOnly != 0)
		}
		i++
		return rope.WalkerResult{}
	})

	return string(pretty.Pretty(out))
}
