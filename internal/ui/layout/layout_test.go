package layout

import (
	"strings"
	"testing"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{MinWidth, MinHeight, false},
		{MinWidth - 1, 40, true},
		{120, MinHeight - 1, true},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth(300); got != MaxTextWidth {
		t.Errorf("TextWidth(300) = %d, want %d", got, MaxTextWidth)
	}
	if got := TextWidth(80); got != 72 {
		t.Errorf("TextWidth(80) = %d, want 72", got)
	}
	if got := TextWidth(10); got != 20 {
		t.Errorf("TextWidth(10) = %d, want 20", got)
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Interview", "2/5", 80)
	for _, want := range []string{"assessor", "Interview", "2/5"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Enter", Description: "Submit"}}, 80)
	if !strings.Contains(f, "Enter") || !strings.Contains(f, "Submit") {
		t.Errorf("footer missing hint: %q", f)
	}
}
