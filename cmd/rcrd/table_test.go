package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsAndAligns(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{
			{"alpha", "7"},
			{"beta"},
		},
		1,
	)
	requireContains(t, out, "alpha")
	requireContains(t, out, "beta")
	// Right alignment puts the count at the cell's trailing edge.
	requireContains(t, out, "    7 ")
	if lines := strings.Split(out, "\n"); len(lines) < 5 {
		t.Fatalf("expected boxed table, got:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
