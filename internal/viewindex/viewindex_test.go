package viewindex

import "testing"

func TestAxis_UniformSizes_VisualLogicalIdentityWhenNoneHidden(t *testing.T) {
	a := NewAxis(5, 20)
	for i := 0; i < 5; i++ {
		if got := a.VisualFromLogical(i); got != i {
			t.Errorf("VisualFromLogical(%d) = %d, want %d", i, got, i)
		}
		if got := a.LogicalFromVisual(i); got != i {
			t.Errorf("LogicalFromVisual(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestAxis_HideRange_RemovesFromVisible(t *testing.T) {
	a := NewAxis(5, 20)
	a.HideRange(2, 1)
	if a.VisibleCount() != 4 {
		t.Fatalf("VisibleCount = %d, want 4", a.VisibleCount())
	}
	if got := a.VisualFromLogical(2); got != -1 {
		t.Errorf("VisualFromLogical(hidden) = %d, want -1", got)
	}
	// logical 3 is now at visual position 2 (0,1,_,3,4 -> 0,1,3,4)
	if got := a.LogicalFromVisual(2); got != 3 {
		t.Errorf("LogicalFromVisual(2) = %d, want 3", got)
	}
}

func TestAxis_HideUnhide_Lossless(t *testing.T) {
	// Unhide must restore the exact pre-hide size, not reset to the default.
	a := NewAxis(5, 20)
	a.SetSize(2, 99)
	sizes := a.HideRange(2, 1)
	if len(sizes) != 1 || sizes[0] != 99 {
		t.Fatalf("captured sizes = %v, want [99]", sizes)
	}
	a.UnhideRange(2, 1, sizes)
	if a.VisibleCount() != 5 {
		t.Fatalf("VisibleCount after unhide = %d, want 5", a.VisibleCount())
	}
	if got := a.Size(2); got != 99 {
		t.Errorf("Size(2) after unhide = %d, want 99 (lossless restore)", got)
	}
}

func TestAxis_HideLastVisibleRow_FrameStaysNonEmpty(t *testing.T) {
	a := NewAxis(1, 20)
	a.HideRange(0, 1)
	if a.VisibleCount() != 0 {
		t.Fatalf("VisibleCount = %d, want 0", a.VisibleCount())
	}
	// logical length (frame height analogue) is untouched by hiding.
	if a.logicalLen != 1 {
		t.Errorf("logicalLen = %d, want 1 (hiding does not shrink the frame)", a.logicalLen)
	}
}

func TestAxis_UnhideAll(t *testing.T) {
	a := NewAxis(5, 20)
	a.HideRange(1, 2)
	a.UnhideAll()
	if a.VisibleCount() != 5 {
		t.Fatalf("VisibleCount after UnhideAll = %d, want 5", a.VisibleCount())
	}
}

func TestAxis_CumulativeOffsets_PrefixSum(t *testing.T) {
	a := NewAxis(3, 10)
	a.SetSize(0, 5)
	a.SetSize(1, 15)
	a.SetSize(2, 20)
	want := []int{0, 5, 20, 40}
	for i, w := range want {
		if got := a.OffsetOf(i); got != w {
			t.Errorf("OffsetOf(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestAxis_VisualAtOffset_BinarySearch(t *testing.T) {
	a := NewAxis(3, 10)
	a.SetSize(0, 5)
	a.SetSize(1, 15)
	a.SetSize(2, 20)
	cases := []struct{ p, want int }{
		{0, 0}, {4, 0}, {5, 1}, {19, 1}, {20, 2}, {39, 2}, {40, 3}, {60, 5},
	}
	for _, c := range cases {
		if got := a.VisualAtOffset(c.p); got != c.want {
			t.Errorf("VisualAtOffset(%d) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestAxis_OffsetOf_DefaultWidthTailExtrapolation(t *testing.T) {
	a := NewAxis(2, 10)
	// beyond the stored range, offsets extrapolate using defaultSize.
	if got := a.OffsetOf(5); got != 20+3*10 {
		t.Errorf("OffsetOf(5) = %d, want %d", got, 20+3*10)
	}
}

func TestAxis_ScrollToNearEdge(t *testing.T) {
	a := NewAxis(100, 20)
	// target below viewport -> near bottom edge
	got := a.ScrollToNearEdge(0, 100, 10)
	want := a.OffsetOf(11) - 100
	if got != want {
		t.Errorf("scroll down = %d, want %d", got, want)
	}
	// target above viewport -> exactly at top
	got2 := a.ScrollToNearEdge(500, 100, 2)
	want2 := a.OffsetOf(2)
	if got2 != want2 {
		t.Errorf("scroll up = %d, want %d", got2, want2)
	}
	// target already within viewport -> unchanged
	got3 := a.ScrollToNearEdge(0, 1000, 5)
	if got3 != 0 {
		t.Errorf("scroll within viewport changed to %d, want 0", got3)
	}
}

func TestSetVisibilityMask_ReplacesWholesale(t *testing.T) {
	a := NewAxis(5, 20)
	a.SetVisibilityMask([]bool{true, false, true, false, true})
	if a.VisibleCount() != 3 {
		t.Fatalf("VisibleCount = %d, want 3", a.VisibleCount())
	}
	if !a.IsHidden(1) || !a.IsHidden(3) {
		t.Error("expected indices 1 and 3 hidden")
	}
}

func TestIndex_ScrollTo_BothAxes(t *testing.T) {
	idx := NewIndex(50, 50, 20, 100)
	idx.ScrollTo(300, 200, 10, 10)
	if idx.ScrollX < 0 || idx.ScrollY < 0 {
		t.Errorf("negative scroll: x=%d y=%d", idx.ScrollX, idx.ScrollY)
	}
}
