package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name           string
		width          int
		height         int
		viewportWidth  int
		viewportHeight int
		composerHeight int
	}{
		{name: "standard", width: 80, height: 24, viewportWidth: 76, viewportHeight: 9, composerHeight: 6},
		{name: "wide", width: 200, height: 40, viewportWidth: 196, viewportHeight: 23, composerHeight: 8},
		{name: "cramped", width: 30, height: 12, viewportWidth: 40, viewportHeight: 6, composerHeight: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.viewportHeight != tc.viewportHeight {
				t.Fatalf("viewport height mismatch: got %d want %d", layout.viewportHeight, tc.viewportHeight)
			}
			if layout.composerHeight != tc.composerHeight {
				t.Fatalf("composer height mismatch: got %d want %d", layout.composerHeight, tc.composerHeight)
			}
		})
	}
}
