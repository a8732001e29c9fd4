package rope_test

import (
	"math"
	"testing"

	"github.com/dshills/textengine/internal/rope"
)

// testItem/testSummary are a minimal Item/Summary pair used to exercise the
// generic rope mechanics independently of the segment package.

type testItem struct {
	v     int
	isBreak bool
	empty bool
}

type testSummary struct {
	width  uint32
	breaks uint32
}

func (s testSummary) Add(o testSummary) testSummary {
	return testSummary{width: s.width + o.width, breaks: s.breaks + o.breaks}
}

const markerBreak rope.MarkerKind = 1

func (s testSummary) MarkerCount(kind rope.MarkerKind) uint32 {
	if kind == markerBreak {
		return s.breaks
	}
	return 0
}

func (it testItem) Summary() testSummary {
	if it.empty {
		return testSummary{}
	}
	b := uint32(0)
	if it.isBreak {
		b = 1
	}
	return testSummary{width: uint32(it.v), breaks: b}
}

func (it testItem) IsEmpty() bool { return it.empty }

func items(n int) []testItem {
	out := make([]testItem, n)
	for i := range out {
		out[i] = testItem{v: 1}
	}
	return out
}

func TestRopeCountAndGet(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(20))
	if r.Count() != 20 {
		t.Fatalf("Count() = %d, want 20", r.Count())
	}
	for i := uint32(0); i < 20; i++ {
		if _, ok := r.Get(i); !ok {
			t.Fatalf("Get(%d) missing", i)
		}
	}
	if _, ok := r.Get(20); ok {
		t.Fatalf("Get(20) should be out of range")
	}
}

func TestRopeInsertDelete(t *testing.T) {
	r := rope.New[testItem, testSummary]()
	var err error
	for i := 0; i < 10; i++ {
		r, err = r.Append(testItem{v: i})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	r, err = r.Insert(5, testItem{v: 99})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got, _ := r.Get(5); got.v != 99 {
		t.Fatalf("Get(5) = %+v, want v=99", got)
	}
	r, err = r.Delete(5)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := r.Get(5); got.v != 5 {
		t.Fatalf("Get(5) after delete = %+v, want v=5", got)
	}
	if r.Count() != 10 {
		t.Fatalf("Count() = %d, want 10", r.Count())
	}
}

func TestRopeInsertEmptyIsNoop(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(3))
	r2, err := r.Insert(1, testItem{empty: true})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if r2.Count() != 3 {
		t.Fatalf("Count() = %d, want 3 (empty insert is a no-op)", r2.Count())
	}
}

func TestRopeDeleteToEmpty(t *testing.T) {
	r := rope.FromItem[testItem, testSummary](testItem{v: 1})
	r, err := r.Delete(0)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}
}

func TestRopeSplitConcat(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(20))
	left, right := r.Split(7)
	if left.Count() != 7 || right.Count() != 13 {
		t.Fatalf("Split(7) = %d/%d, want 7/13", left.Count(), right.Count())
	}
	rejoined := left.Concat(right)
	if rejoined.Count() != 20 {
		t.Fatalf("Concat = %d, want 20", rejoined.Count())
	}

	// split(0) yields an empty left.
	emptyLeft, all := r.Split(0)
	if emptyLeft.Count() != 0 || all.Count() != 20 {
		t.Fatalf("Split(0) = %d/%d, want 0/20", emptyLeft.Count(), all.Count())
	}

	// concat with empty is identity.
	if r.Concat(rope.New[testItem, testSummary]()).Count() != 20 {
		t.Fatalf("Concat with empty changed count")
	}
}

func TestRopeDeleteRange(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(20))
	r, err := r.DeleteRange(5, 15)
	if err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if r.Count() != 10 {
		t.Fatalf("Count() = %d, want 10", r.Count())
	}
}

func TestRopeWalkStopAndSkip(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(30))
	var seen []uint32
	r.Walk(func(it testItem, idx uint32) rope.WalkerResult {
		seen = append(seen, idx)
		if idx == 10 {
			return rope.WalkerResult{Stop: true}
		}
		return rope.WalkerResult{}
	})
	if seen[len(seen)-1] != 10 {
		t.Fatalf("Walk did not stop at 10: last=%d", seen[len(seen)-1])
	}

	var fromIdx []uint32
	r.WalkFrom(25, func(it testItem, idx uint32) rope.WalkerResult {
		fromIdx = append(fromIdx, idx)
		return rope.WalkerResult{}
	})
	if len(fromIdx) != 5 || fromIdx[0] != 25 {
		t.Fatalf("WalkFrom(25) = %v, want [25..29]", fromIdx)
	}

	// SkipSubtree drops the rest of the current leaf, and every index passed
	// afterwards is still the item's absolute position.
	numbered := make([]testItem, 30)
	for i := range numbered {
		numbered[i] = testItem{v: i}
	}
	visited := 0
	rope.FromSlice[testItem, testSummary](numbered).Walk(func(it testItem, idx uint32) rope.WalkerResult {
		if uint32(it.v) != idx {
			t.Fatalf("Walk after SkipSubtree passed idx=%d for item v=%d", idx, it.v)
		}
		visited++
		if visited == 1 {
			return rope.WalkerResult{SkipSubtree: true}
		}
		return rope.WalkerResult{}
	})
	if visited >= 30 {
		t.Fatalf("SkipSubtree skipped nothing: visited %d of 30 items", visited)
	}
}

func TestRopeMarkerCache(t *testing.T) {
	var built []testItem
	for i := 0; i < 9; i++ {
		built = append(built, testItem{v: 1})
		if i%3 == 2 {
			built = append(built, testItem{v: 0, isBreak: true})
		}
	}
	r := rope.FromSlice[testItem, testSummary](built)
	if r.MarkerCount(markerBreak) != 3 {
		t.Fatalf("MarkerCount = %d, want 3", r.MarkerCount(markerBreak))
	}
	idx, it, ok := r.GetMarker(markerBreak, 1)
	if !ok || !it.isBreak {
		t.Fatalf("GetMarker(1) = idx=%d item=%+v ok=%v", idx, it, ok)
	}
}

func TestRopeFingerSequentialEdits(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(50))
	f := r.MakeFinger(10)
	var err error
	for i := 0; i < 5; i++ {
		r, err = f.InsertAtFinger(r, testItem{v: 100 + i})
		if err != nil {
			t.Fatalf("InsertAtFinger: %v", err)
		}
	}
	if r.Count() != 55 {
		t.Fatalf("Count() = %d, want 55", r.Count())
	}
	if got, _ := r.Get(10); got.v != 100 {
		t.Fatalf("Get(10) = %+v, want v=100", got)
	}
}

func TestRopeDepthBound(t *testing.T) {
	r := rope.New[testItem, testSummary]()
	var err error
	for i := 0; i < 2000; i++ {
		r, err = r.Insert(r.Count()/2, testItem{v: i})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	bound := 4.5*math.Log2(float64(r.Count())) + 1
	if float64(r.Depth()) > bound {
		t.Fatalf("Depth() = %d exceeds bound %.1f for count %d", r.Depth(), bound, r.Count())
	}
}

func TestRopeCapacity(t *testing.T) {
	r := rope.New[testItem, testSummary](rope.WithCapacity[testItem, testSummary](3))
	var err error
	for i := 0; i < 3; i++ {
		r, err = r.Append(testItem{v: i})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	if _, err = r.Append(testItem{v: 3}); err == nil {
		t.Fatalf("expected OutOfMemory at capacity")
	}
}

func TestRopeSummaryBefore(t *testing.T) {
	r := rope.FromSlice[testItem, testSummary](items(40))

	if s := r.SummaryBefore(0); s.width != 0 {
		t.Fatalf("SummaryBefore(0) = %+v, want zero", s)
	}
	if s := r.SummaryBefore(40); s.width != 40 {
		t.Fatalf("SummaryBefore(count) = %+v, want width 40", s)
	}
	if s := r.SummaryBefore(100); s.width != 40 {
		t.Fatalf("SummaryBefore(past end) = %+v, want clamped to width 40", s)
	}
	for i := uint32(0); i <= 40; i++ {
		if s := r.SummaryBefore(i); s.width != i {
			t.Fatalf("SummaryBefore(%d).width = %d, want %d", i, s.width, i)
		}
	}
}

func TestRopeSummaryBeforeAcrossMarkers(t *testing.T) {
	var built []testItem
	for i := 0; i < 9; i++ {
		built = append(built, testItem{v: 1})
		if i%3 == 2 {
			built = append(built, testItem{v: 0, isBreak: true})
		}
	}
	r := rope.FromSlice[testItem, testSummary](built)

	idx, _, ok := r.GetMarker(markerBreak, 1)
	if !ok {
		t.Fatalf("GetMarker(1) not found")
	}
	s := r.SummaryBefore(idx)
	if s.width != 6 || s.breaks != 1 {
		t.Fatalf("SummaryBefore(%d) = %+v, want width=6 breaks=1", idx, s)
	}
}
