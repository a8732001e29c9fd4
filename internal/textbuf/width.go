package textbuf

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// WidthMethod selects how runs of text are segmented into graphemes and
// measured for display width.
type WidthMethod uint8

const (
	// WidthUnicode performs full UAX #29 grapheme clustering, joining ZWJ
	// sequences (emoji families, etc.) into a single cluster.
	WidthUnicode WidthMethod = iota
	// WidthNoZWJ clusters graphemes the same way but treats U+200D as a
	// cluster terminator rather than a joiner: a ZWJ sequence that would
	// normally join into one cluster instead splits into one cluster per
	// ZWJ-delimited piece. Skin-tone modifiers, combining marks, keycap
	// sequences, and regional-indicator pairs are unaffected since none of
	// them are ZWJ-joined.
	WidthNoZWJ
	// WidthWCWidth measures width per Unicode codepoint with no clustering
	// at all (the classic wcwidth behaviour).
	WidthWCWidth
)

const zwj = '‍'

// clusters splits s into the grapheme clusters (or codepoints, for
// WidthWCWidth) that the active width method uses as its atomic units.
func clusters(s string, method WidthMethod) []string {
	if method == WidthWCWidth {
		out := make([]string, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}

	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		c := g.Str()
		if method == WidthUnicode || !strings.ContainsRune(c, zwj) {
			out = append(out, c)
			continue
		}
		out = append(out, splitOnZWJ(c)...)
	}
	return out
}

// splitOnZWJ breaks a ZWJ-joined cluster into one piece per joiner,
// discarding the zero-width joiner codepoints themselves.
func splitOnZWJ(c string) []string {
	parts := strings.Split(c, string(zwj))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{c}
	}
	return out
}

// clusterWidth returns the display width of a single cluster produced by
// clusters(). tabWidth governs a literal tab byte; everything else is
// measured with uniseg's East-Asian-Width-aware string width for Unicode
// clustering, or go-runewidth per codepoint for WCWidth.
func clusterWidth(c string, method WidthMethod, tabWidth uint32) uint32 {
	if c == "\t" {
		return tabWidth
	}
	if method == WidthWCWidth {
		r, _ := utf8.DecodeRuneInString(c)
		return uint32(runewidth.RuneWidth(r))
	}
	return uint32(uniseg.StringWidth(c))
}

// measure returns the total display width and grapheme-cluster count of s
// under method, honouring tabWidth for literal tabs.
func measure(s string, method WidthMethod, tabWidth uint32) (width, chars uint32) {
	for _, c := range clusters(s, method) {
		width += clusterWidth(c, method, tabWidth)
		chars++
	}
	return width, chars
}
