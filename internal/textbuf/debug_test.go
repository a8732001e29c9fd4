package textbuf_test

import (
	"testing"

	"github.com/dshills/textengine/internal/textbuf"
	"github.com/tidwall/gjson"
)

func TestDebugSnapshot(t *testing.T) {
	tb := textbuf.New(nil)
	if err := tb.SetText("ab\ncd"); err != nil {
		t.Fatalf("SetText: %v", err)
	}

	snap := tb.DebugSnapshot()
	if !gjson.Valid(snap) {
		t.Fatalf("DebugSnapshot produced invalid JSON: %s", snap)
	}

	if got := gjson.Get(snap, "lineCount").Uint(); got != 2 {
		t.Fatalf("lineCount = %d, want 2", got)
	}
	if got := gjson.Get(snap, "breakCount").Uint(); got != 1 {
		t.Fatalf("breakCount = %d, want 1", got)
	}

	kinds := gjson.Get(snap, "segments.#.kind").Array()
	want := []string{"line-start", "text", "break", "line-start", "text"}
	if len(kinds) != len(want) {
		t.Fatalf("segment count = %d, want %d", len(kinds), len(want))
	}
	for i, k := range want {
		if kinds[i].String() != k {
			t.Fatalf("segments.%d.kind = %q, want %q", i, kinds[i].String(), k)
		}
	}
}
