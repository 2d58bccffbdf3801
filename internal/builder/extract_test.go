package builder

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/fakeyudi/please/internal/history"
	"github.com/fakeyudi/please/internal/session"
)

func snapshotOf(texts ...string) *history.Snapshot {
	s := &history.Snapshot{}
	for _, t := range texts {
		s.Records = append(s.Records, history.Record{Text: t})
		s.Size += int64(len(t) + 1)
	}
	return s
}

var testFilter = SelfFilter{ToolName: "please"}

func TestSelfFilterMatch(t *testing.T) {
	f := SelfFilter{ToolName: "please", Ignored: []string{"cargo run --"}}
	tests := []struct {
		text string
		want bool
	}{
		{"please build demo", true},
		{"please", true},
		{"  please ask Name?", true},
		{"./please list", true},
		{"/usr/local/bin/please run x", true},
		{"cargo run -- current", true},
		{"pleased to meet you", false},
		{"echo please", false},
		{"sudo please", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := f.Match(tt.text); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractAskSpliceOrdering(t *testing.T) {
	snap := snapshotOf("old", "a", "b", "c")
	m := history.Marker{Records: 1, Size: 4}
	asks := []session.AskEntry{{Index: 1, Lines: []string{"READ", "EXPR"}}}

	lines, err := Extract(snap, m, asks, testFilter)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"a", "READ", "EXPR", "b", "c"}
	if diff := cmp.Diff(want, lineTexts(lines)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if lines[1].Ask != true || lines[0].Ask != false {
		t.Errorf("Ask flags not set correctly: %+v", lines)
	}
}

func TestExtractAskAtStart(t *testing.T) {
	lines, err := Extract(snapshotOf("a"), history.Marker{}, []session.AskEntry{{Index: 0, Lines: []string{"Q"}}}, testFilter)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff([]string{"Q", "a"}, lineTexts(lines)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTiesKeepRecordingOrder(t *testing.T) {
	asks := []session.AskEntry{
		{Index: 1, Lines: []string{"first"}},
		{Index: 1, Lines: []string{"second"}},
		{Index: 0, Lines: []string{"zero"}},
	}
	lines, err := Extract(snapshotOf("a", "b"), history.Marker{}, asks, testFilter)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"zero", "a", "first", "second", "b"}
	if diff := cmp.Diff(want, lineTexts(lines)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIndexBeyondEndAppends(t *testing.T) {
	asks := []session.AskEntry{{Index: 7, Lines: []string{"late"}}}
	lines, err := Extract(snapshotOf("a"), history.Marker{}, asks, testFilter)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "late"}, lineTexts(lines)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftBodyEmpty(t *testing.T) {
	if got := (&Draft{}).Body(); got != "" {
		t.Errorf("empty draft body: got %q", got)
	}
}

// Feature: please, Property: self-filtering and slice correctness
func TestExtractSliceAndSelfFilter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cmdGen := rapid.OneOf(
			rapid.StringMatching(`(echo|ls|make|git) [a-z]{1,6}`),
			rapid.StringMatching(`(\./)?please( [a-z]{1,6})?`),
		)
		before := rapid.SliceOfN(cmdGen, 0, 20).Draw(t, "before")
		after := rapid.SliceOfN(cmdGen, 0, 20).Draw(t, "after")

		marker := snapshotOf(before...).Marker()
		lines, err := Extract(snapshotOf(append(append([]string{}, before...), after...)...), marker, nil, testFilter)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}

		var want []string
		for _, c := range after {
			if !testFilter.Match(c) {
				want = append(want, c)
			}
		}
		got := lineTexts(lines)
		if len(got) != len(want) {
			t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
			}
		}
		for _, l := range got {
			if testFilter.Match(l) {
				t.Fatalf("self invocation %q leaked into the script", l)
			}
		}
	})
}

// Feature: please, Property: asks are never lost and land in order
func TestExtractTotalAndOrdered(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 15).Draw(t, "n")
		cmds := make([]string, n)
		for i := range cmds {
			cmds[i] = fmt.Sprintf("cmd%d", i)
		}
		numAsks := rapid.IntRange(0, 6).Draw(t, "numAsks")
		asks := make([]session.AskEntry, numAsks)
		prev := 0
		for i := range asks {
			// Indexes are non-decreasing as they are recorded, and may run
			// past the end when history entries were lost.
			prev = rapid.IntRange(prev, n+3).Draw(t, fmt.Sprintf("index%d", i))
			asks[i] = session.AskEntry{Index: prev, Lines: []string{fmt.Sprintf("ask%d", i)}}
		}

		lines, err := Extract(snapshotOf(cmds...), history.Marker{}, asks, testFilter)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if len(lines) != n+numAsks {
			t.Fatalf("expected %d lines, got %d", n+numAsks, len(lines))
		}

		// Every ask appears after exactly min(Index, n) commands.
		seenCmds, seenAsks := 0, 0
		for _, l := range lines {
			if !l.Ask {
				if l.Text != cmds[seenCmds] {
					t.Fatalf("command order broken: got %q, want %q", l.Text, cmds[seenCmds])
				}
				seenCmds++
				continue
			}
			a := asks[seenAsks]
			if l.Text != a.Lines[0] {
				t.Fatalf("ask order broken: got %q, want %q", l.Text, a.Lines[0])
			}
			if want := min(a.Index, n); seenCmds != want {
				t.Fatalf("ask %d placed after %d commands, want %d", seenAsks, seenCmds, want)
			}
			seenAsks++
		}
	})
}
