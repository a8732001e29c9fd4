package segment_test

import (
	"errors"
	"testing"

	"github.com/dshills/textengine/internal/segment"
)

func TestSegmentSummary(t *testing.T) {
	ls := segment.LineStart()
	br := segment.Break()
	tx := segment.Text(segment.TextChunk{Width: 6, Chars: 6, Flags: segment.FlagASCIIOnly})

	total := ls.Summary().Add(tx.Summary()).Add(br.Summary())
	if total.LineStarts != 1 || total.Breaks != 1 || total.Width != 6 || total.Chars != 7 {
		t.Fatalf("total = %+v, want {Width:6 Chars:7 Breaks:1 LineStarts:1}", total)
	}
}

func TestSegmentIsEmpty(t *testing.T) {
	if segment.LineStart().IsEmpty() {
		t.Fatalf("LineStart should never be empty")
	}
	if segment.Break().IsEmpty() {
		t.Fatalf("Break should never be empty")
	}
	if !segment.Text(segment.TextChunk{ByteStart: 5, ByteEnd: 5}).IsEmpty() {
		t.Fatalf("zero-length text chunk should be empty")
	}
	if segment.Text(segment.TextChunk{ByteStart: 5, ByteEnd: 9}).IsEmpty() {
		t.Fatalf("non-zero-length text chunk should not be empty")
	}
}

func TestMemRegistryLifecycle(t *testing.T) {
	r := segment.NewMemRegistry()
	id, err := r.Register([]byte("hello"), true)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, ok := r.Get(id)
	if !ok || string(got) != "hello" {
		t.Fatalf("Get(%d) = %q, %v", id, got, ok)
	}
	r.Reset()
	if r.Valid(id) {
		t.Fatalf("Valid(%d) after Reset, want false", id)
	}
}

func TestMemRegistryExhaustion(t *testing.T) {
	r := segment.NewMemRegistry()
	for i := 0; i < segment.MaxMemBuffers; i++ {
		if _, err := r.Register([]byte("x"), false); err != nil {
			t.Fatalf("Register #%d: %v", i, err)
		}
	}
	if _, err := r.Register([]byte("x"), false); !errors.Is(err, segment.ErrOutOfMemory) {
		t.Fatalf("Register at capacity err = %v, want ErrOutOfMemory", err)
	}
}
