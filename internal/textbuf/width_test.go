package textbuf

import "testing"

func TestMeasureASCII(t *testing.T) {
	w, c := measure("hello", WidthUnicode, 4)
	if w != 5 || c != 5 {
		t.Fatalf("measure(hello) = width=%d chars=%d, want 5,5", w, c)
	}
}

func TestMeasureTab(t *testing.T) {
	w, c := measure("\t", WidthUnicode, 4)
	if w != 4 || c != 1 {
		t.Fatalf("measure(tab) = width=%d chars=%d, want 4,1", w, c)
	}
}

// "a😀b" under full clustering has three clusters: 'a' (width 1),
// the emoji (width 2), and 'b' (width 1) — scenario 4 from the spec.
func TestMeasureWideGrapheme(t *testing.T) {
	w, c := measure("a\U0001F600b", WidthUnicode, 4)
	if c != 3 {
		t.Fatalf("measure(a+emoji+b) chars = %d, want 3", c)
	}
	if w != 4 {
		t.Fatalf("measure(a+emoji+b) width = %d, want 4", w)
	}
}

// A ZWJ emoji sequence (woman astronaut) joins into a single cluster under WidthUnicode but
// splits into its constituent pieces under WidthNoZWJ.
func TestWidthNoZWJSplitsOnJoiner(t *testing.T) {
	family := "\U0001F469‍\U0001F680" // woman + ZWJ + rocket

	joined := clusters(family, WidthUnicode)
	if len(joined) != 1 {
		t.Fatalf("WidthUnicode clusters(family) = %d clusters, want 1", len(joined))
	}

	split := clusters(family, WidthNoZWJ)
	if len(split) != 2 {
		t.Fatalf("WidthNoZWJ clusters(family) = %d clusters, want 2", len(split))
	}
}

func TestWidthWCWidthPerCodepoint(t *testing.T) {
	c := clusters("a\U0001F600b", WidthWCWidth)
	if len(c) != 3 {
		t.Fatalf("WCWidth clusters = %d, want 3", len(c))
	}
}

func TestSplitOnZWJNoJoinerReturnsWhole(t *testing.T) {
	out := splitOnZWJ("abc")
	if len(out) != 1 || out[0] != "abc" {
		t.Fatalf("splitOnZWJ(no joiner) = %v, want [abc]", out)
	}
}
