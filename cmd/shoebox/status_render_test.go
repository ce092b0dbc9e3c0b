package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Source", statusError, "not readable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Source:", "[ERROR] not readable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Target", statusOK, "writable", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCountStatus(t *testing.T) {
	if got := countStatus(0, statusWarn); got != statusOK {
		t.Fatalf("zero problems should be OK, got %v", got)
	}
	if got := countStatus(2, statusWarn); got != statusWarn {
		t.Fatalf("expected warn, got %v", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestPluralizeAndFormatCount(t *testing.T) {
	cases := map[int]string{
		0:    "0 photos",
		1:    "1 photo",
		1234: "1,234 photos",
	}
	for n, want := range cases {
		if got := pluralize(n, "photo"); got != want {
			t.Fatalf("pluralize(%d) = %q, want %q", n, got, want)
		}
	}
	if got := titleCase("in-place"); got != "In Place" {
		t.Fatalf("titleCase = %q", got)
	}
}

func TestRenderTableFooter(t *testing.T) {
	out := renderTable(tableSpec{
		headers: []string{"Folder", "Photos"},
		rows:    [][]string{{"2023_Photos", "3"}},
		aligns:  []columnAlignment{alignLeft, alignRight},
		footer:  []string{"Total", "3"},
	})
	for _, want := range []string{"FOLDER", "2023_Photos", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
