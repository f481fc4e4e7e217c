// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
)

func TestNewTheme_ExplicitMode(t *testing.T) {
	if th := NewTheme("dark"); !th.IsDark {
		t.Error("dark mode should set IsDark")
	}
	if th := NewTheme("LIGHT"); th.IsDark {
		t.Error("light mode should clear IsDark")
	}
}

func TestTheme_LayoutMode(t *testing.T) {
	th := NewTheme("dark")
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		th.SetSize(tt.width, 30)
		if got := th.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestTheme_ContentWidth(t *testing.T) {
	th := NewTheme("dark")
	th.SetSize(80, 24)
	if got := th.ContentWidth(); got != 78 {
		t.Errorf("ContentWidth = %d, want 78", got)
	}
	th.SetSize(5, 24)
	if got := th.ContentWidth(); got != 20 {
		t.Errorf("ContentWidth floor = %d, want 20", got)
	}
}
