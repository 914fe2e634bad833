// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"
)

func TestRenderProgressBar(t *testing.T) {
	cases := []struct {
		width   int
		percent float64
	}{
		{10, 0},
		{10, 50},
		{10, 100},
		{30, 33.3},
		{1, 100},
	}

	for _, tc := range cases {
		result := RenderProgressBar(tc.width, tc.percent)
		if len(result) != tc.width {
			t.Errorf("RenderProgressBar(%d, %.1f) length = %d, want %d",
				tc.width, tc.percent, len(result), tc.width)
		}
	}
}

func TestRenderProgressBarFull(t *testing.T) {
	result := RenderProgressBar(10, 100)
	if result != strings.Repeat(ProgressFull, 10) {
		t.Errorf("full bar = %q", result)
	}
}

func TestRenderProgressBarEmpty(t *testing.T) {
	result := RenderProgressBar(10, 0)
	if result != strings.Repeat(ProgressEmpty, 10) {
		t.Errorf("empty bar = %q", result)
	}
}

func TestRenderProgressBarClampsBounds(t *testing.T) {
	if got := RenderProgressBar(10, -50); got != strings.Repeat(ProgressEmpty, 10) {
		t.Errorf("negative percent should render empty bar, got %q", got)
	}
	if got := RenderProgressBar(10, 250); got != strings.Repeat(ProgressFull, 10) {
		t.Errorf("percent above 100 should render full bar, got %q", got)
	}
	if got := RenderProgressBar(0, 50); got != "" {
		t.Errorf("zero width should render nothing, got %q", got)
	}
}

func TestSpinnerDuration(t *testing.T) {
	if d := LineSpinner.Duration(); d != time.Second/10 {
		t.Errorf("LineSpinner.Duration() = %v", d)
	}
}
