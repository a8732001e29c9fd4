package grapheme_test

import (
	"errors"
	"testing"

	"github.com/dshills/textengine/internal/grapheme"
)

func TestAllocGetRoundTrip(t *testing.T) {
	p := grapheme.New()
	h, err := p.Alloc([]byte("a"))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	got, err := p.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "a" {
		t.Fatalf("Get = %q, want %q", got, "a")
	}
	if rc, err := p.GetRefcount(h); err != nil || rc != 0 {
		t.Fatalf("GetRefcount = %d, %v; want 0, nil", rc, err)
	}
}

func TestAllocOutOfMemoryForOversizedPayload(t *testing.T) {
	p := grapheme.New()
	big := make([]byte, 200)
	if _, err := p.Alloc(big); !errors.Is(err, grapheme.ErrOutOfMemory) {
		t.Fatalf("Alloc(200 bytes) err = %v, want ErrOutOfMemory", err)
	}
}

func TestInvalidHandle(t *testing.T) {
	p := grapheme.New()
	if _, err := p.Get(grapheme.Handle(0xFFFFFFFF)); !errors.Is(err, grapheme.ErrInvalidHandle) {
		t.Fatalf("Get(garbage) err = %v, want ErrInvalidHandle", err)
	}
}

// TestWrongGenerationAfterReuse mirrors the spec's scenario 5: a tiny pool
// with two slots per class, one handle decref'd to zero, then enough
// further allocations to force that slot to be recycled. The original
// handle must then report WrongGeneration.
func TestWrongGenerationAfterReuse(t *testing.T) {
	p := grapheme.New(grapheme.WithPageSizes([5]int{2, 2, 2, 2, 2}))

	zwjEmoji := []byte("\U0001F469‍\U0001F680") // woman + ZWJ + rocket
	h, err := p.Alloc(zwjEmoji)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := p.Incref(h); err != nil {
		t.Fatalf("Incref: %v", err)
	}
	if err := p.Decref(h); err != nil {
		t.Fatalf("Decref (to 0): %v", err)
	}

	other := []byte("\U0001F468‍\U0001F680") // different emoji (man + ZWJ + rocket), same size class
	for i := 0; i < 10; i++ {
		if _, err := p.Alloc(other); err != nil {
			t.Fatalf("Alloc #%d: %v", i, err)
		}
	}

	if _, err := p.Get(h); !errors.Is(err, grapheme.ErrWrongGeneration) {
		t.Fatalf("Get(stale handle) err = %v, want ErrWrongGeneration", err)
	}
}

func TestConsistencyAfterBulkReuse(t *testing.T) {
	p := grapheme.New(grapheme.WithPageSizes([5]int{4, 4, 4, 4, 4}))

	const n = 20
	handles := make([]grapheme.Handle, n)
	for i := 0; i < n; i++ {
		h, err := p.Alloc([]byte{byte('a' + i%26)})
		if err != nil {
			t.Fatalf("Alloc #%d: %v", i, err)
		}
		handles[i] = h
	}
	for _, h := range handles {
		if err := p.Incref(h); err != nil {
			t.Fatalf("Incref: %v", err)
		}
		if err := p.Decref(h); err != nil {
			t.Fatalf("Decref: %v", err)
		}
	}
	for i := 0; i < 2*n; i++ {
		if _, err := p.Alloc([]byte{'x'}); err != nil {
			t.Fatalf("Alloc (refill) #%d: %v", i, err)
		}
	}
	for _, h := range handles {
		if _, err := p.Get(h); err == nil {
			t.Fatalf("Get(%v) succeeded after bulk reuse, want an error", h)
		}
	}
}

func TestDecrefBelowZeroRejected(t *testing.T) {
	p := grapheme.New()
	h, err := p.Alloc([]byte("x"))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := p.Decref(h); err == nil {
		t.Fatalf("Decref at ref_count 0 should fail")
	}
}
