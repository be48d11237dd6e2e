// ABOUTME: Tests for formatting insertion.
// ABOUTME: Includes the round-trip property and boundary selections.

package editor

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func TestInsert(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		start, end     int
		prefix, suffix string
		want           string
		caret          int
	}{
		{"empty selection at start", "abc", 0, 0, "**", "**", "****abc", 4},
		{"wrap middle", "hello world", 6, 11, "**", "**", "hello **world**", 15},
		{"wrap whole", "abc", 0, 3, "*", "*", "*abc*", 5},
		{"empty selection at end", "abc", 3, 3, "`", "`", "abc``", 5},
		{"empty content", "", 0, 0, "# ", "", "# ", 2},
		{"link", "see docs", 4, 8, "[", "](url)", "see [docs](url)", 15},
		{"multibyte", "héllo ✓", 6, 7, "**", "**", "héllo **✓**", 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, caret, err := Insert(tt.content, tt.start, tt.end, tt.prefix, tt.suffix)
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if caret != tt.caret {
				t.Errorf("expected caret %d, got %d", tt.caret, caret)
			}
		})
	}
}

func TestInsertRejectsBadSelection(t *testing.T) {
	tests := []struct {
		start, end int
	}{
		{-1, 0},
		{2, 1},
		{0, 4},
		{5, 5},
	}
	for _, tt := range tests {
		if _, _, err := Insert("abc", tt.start, tt.end, "*", "*"); !errors.Is(err, ErrBadSelection) {
			t.Errorf("[%d,%d): expected ErrBadSelection, got %v", tt.start, tt.end, err)
		}
	}
}

func TestInsertRoundTrip(t *testing.T) {
	contents := []string{"", "a", "abc", "hello, world", "línea ✓ ünïcode"}
	pairs := [][2]string{{"**", "**"}, {"[", "](url)"}, {"# ", ""}, {"", ""}, {"```\n", "\n```"}}

	for _, content := range contents {
		n := utf8.RuneCountInString(content)
		for s := 0; s <= n; s++ {
			for e := s; e <= n; e++ {
				for _, p := range pairs {
					out, _, err := Insert(content, s, e, p[0], p[1])
					if err != nil {
						t.Fatalf("Insert(%q,%d,%d) failed: %v", content, s, e, err)
					}
					if back := remove(out, s, e, p[0], p[1]); back != content {
						t.Fatalf("round trip of %q [%d,%d) with %q/%q gave %q", content, s, e, p[0], p[1], back)
					}
				}
			}
		}
	}
}

// remove undoes Insert: it drops len(prefix) runes at s and len(suffix) runes
// after the shifted end.
func remove(out string, s, e int, prefix, suffix string) string {
	r := []rune(out)
	lp := utf8.RuneCountInString(prefix)
	ls := utf8.RuneCountInString(suffix)
	shiftedEnd := e + lp
	r = append(r[:shiftedEnd:shiftedEnd], r[shiftedEnd+ls:]...)
	r = append(r[:s:s], r[s+lp:]...)
	return string(r)
}

func TestFormatApply(t *testing.T) {
	got, caret, err := Bold.Apply("make me bold", 8, 12)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != "make me **bold**" || caret != 16 {
		t.Errorf("unexpected %q caret %d", got, caret)
	}
}

func TestLookupFormat(t *testing.T) {
	f, ok := LookupFormat(" Bold ")
	if !ok || f != Bold {
		t.Errorf("expected Bold, got %+v ok=%v", f, ok)
	}
	if _, ok := LookupFormat("blink"); ok {
		t.Error("expected unknown format to be missing")
	}
	if len(Formats()) != len(formats) {
		t.Error("expected Formats to list every format")
	}
}
