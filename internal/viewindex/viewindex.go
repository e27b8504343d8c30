// Package viewindex implements the View Index component: the
// mapping between logical (stored) row/column order and visual (on
// screen) order, driven by visibility bitmasks, plus the pixel geometry
// needed to resolve a point to a cell and back.
package viewindex

import "sort"

// Axis tracks visibility and pixel sizing for one dimension (rows or
// columns) of a single frame's grid. Hidden indices are excluded from
// Visible and from the cumulative offset table; DefaultSize is used for
// any logical index beyond the sized prefix.
type Axis struct {
	hidden      map[int]bool
	sizes       map[int]int
	defaultSize int
	logicalLen  int

	visible []int // sorted ascending, logical indices currently shown
	offsets []int // cumulative pixel offset of visible[i], length len(visible)+1
	dirty   bool
}

// NewAxis builds an Axis with logicalLen logical slots, all initially
// visible at defaultSize.
func NewAxis(logicalLen, defaultSize int) *Axis {
	a := &Axis{
		hidden:      make(map[int]bool),
		sizes:       make(map[int]int),
		defaultSize: defaultSize,
		logicalLen:  logicalLen,
	}
	a.rebuild()
	return a
}

// Grow extends the logical length by n slots (after an insert).
func (a *Axis) Grow(n int) {
	a.logicalLen += n
	a.dirty = true
}

// Shrink reduces the logical length by n slots from the end (after a
// delete); callers must also clear hidden/sizes entries for removed
// indices via Forget.
func (a *Axis) Shrink(n int) {
	a.logicalLen -= n
	if a.logicalLen < 0 {
		a.logicalLen = 0
	}
	a.dirty = true
}

// Forget drops any hidden/size overrides recorded for logical index i
// (used when a row/column is permanently removed from the frame).
func (a *Axis) Forget(i int) {
	delete(a.hidden, i)
	delete(a.sizes, i)
	a.dirty = true
}

// SetSize overrides the pixel size of a single logical index.
func (a *Axis) SetSize(i, size int) {
	a.sizes[i] = size
	a.dirty = true
}

// Size returns the pixel size of logical index i.
func (a *Axis) Size(i int) int {
	if s, ok := a.sizes[i]; ok {
		return s
	}
	return a.defaultSize
}

// HideRange hides logical indices [at, at+span) and returns the sizes
// that were visible before hiding, so the caller can restore them exactly on unhide.
func (a *Axis) HideRange(at, span int) []int {
	sizes := make([]int, span)
	for i := 0; i < span; i++ {
		idx := at + i
		sizes[i] = a.Size(idx)
		a.hidden[idx] = true
	}
	a.dirty = true
	return sizes
}

// UnhideRange reveals logical indices [at, at+span), restoring sizes
// captured by a prior HideRange when provided (len(sizes)==span);
// otherwise each index keeps whatever size it already has recorded
// (defaultSize if none).
func (a *Axis) UnhideRange(at, span int, sizes []int) {
	for i := 0; i < span; i++ {
		idx := at + i
		delete(a.hidden, idx)
		if sizes != nil && i < len(sizes) {
			a.sizes[idx] = sizes[i]
		}
	}
	a.dirty = true
}

// UnhideAll reveals every hidden index, defaulting each to its recorded
// size if one exists.
func (a *Axis) UnhideAll() {
	for idx := range a.hidden {
		delete(a.hidden, idx)
	}
	a.dirty = true
}

// SetVisibilityMask applies an externally computed mask where mask[i] false hides logical index i.
// Indices beyond len(mask) are left at their current visibility.
func (a *Axis) SetVisibilityMask(mask []bool) {
	for i, v := range mask {
		if i >= a.logicalLen {
			break
		}
		if v {
			delete(a.hidden, i)
		} else {
			a.hidden[i] = true
		}
	}
	a.dirty = true
}

// Clone returns a deep copy of a, decoupled from later mutation of a; used
// by the Document to capture before/after undo snapshots of an axis.
func (a *Axis) Clone() *Axis {
	hidden := make(map[int]bool, len(a.hidden))
	for k, v := range a.hidden {
		hidden[k] = v
	}
	sizes := make(map[int]int, len(a.sizes))
	for k, v := range a.sizes {
		sizes[k] = v
	}
	return &Axis{
		hidden:      hidden,
		sizes:       sizes,
		defaultSize: a.defaultSize,
		logicalLen:  a.logicalLen,
		dirty:       true,
	}
}

func (a *Axis) rebuild() {
	a.visible = a.visible[:0]
	for i := 0; i < a.logicalLen; i++ {
		if !a.hidden[i] {
			a.visible = append(a.visible, i)
		}
	}
	a.offsets = make([]int, len(a.visible)+1)
	acc := 0
	for i, idx := range a.visible {
		a.offsets[i] = acc
		acc += a.Size(idx)
	}
	a.offsets[len(a.visible)] = acc
	a.dirty = false
}

func (a *Axis) ensure() {
	if a.dirty {
		a.rebuild()
	}
}

// VisibleCount returns the number of currently visible logical indices.
func (a *Axis) VisibleCount() int {
	a.ensure()
	return len(a.visible)
}

// IsHidden reports whether logical index i is hidden.
func (a *Axis) IsHidden(i int) bool {
	return a.hidden[i]
}

// VisualFromLogical maps a logical index to its visual position, or -1
// if hidden.
func (a *Axis) VisualFromLogical(logical int) int {
	a.ensure()
	if a.hidden[logical] {
		return -1
	}
	// binary search visible for logical (sorted ascending)
	i := sort.SearchInts(a.visible, logical)
	if i < len(a.visible) && a.visible[i] == logical {
		return i
	}
	return -1
}

// LogicalFromVisual maps a visual position to its logical index
//. Positions beyond the
// visible count extrapolate linearly using defaultSize-width slots
// appended after the last visible logical index.
func (a *Axis) LogicalFromVisual(visual int) int {
	a.ensure()
	if visual < len(a.visible) {
		return a.visible[visual]
	}
	if len(a.visible) == 0 {
		return visual
	}
	last := a.visible[len(a.visible)-1]
	return last + (visual - len(a.visible) + 1)
}

// OffsetOf returns the pixel offset of the start of visual position
// visual in O(1) from the precomputed prefix sum; positions past the
// last visible one extrapolate by defaultSize.
func (a *Axis) OffsetOf(visual int) int {
	a.ensure()
	if visual < len(a.offsets) {
		return a.offsets[visual]
	}
	tail := a.offsets[len(a.offsets)-1]
	extra := visual - (len(a.offsets) - 1)
	return tail + extra*a.defaultSize
}

// VisualAtOffset inverts OffsetOf: returns the visual position whose
// span contains pixel offset p, via binary search
// over the cumulative offsets (search_sorted).
func (a *Axis) VisualAtOffset(p int) int {
	a.ensure()
	if len(a.offsets) <= 1 {
		if a.defaultSize <= 0 {
			return 0
		}
		return p / a.defaultSize
	}
	tail := a.offsets[len(a.offsets)-1]
	if p >= tail {
		if a.defaultSize <= 0 {
			return len(a.visible)
		}
		return len(a.visible) + (p-tail)/a.defaultSize
	}
	// largest i such that offsets[i] <= p
	i := sort.Search(len(a.offsets), func(i int) bool { return a.offsets[i] > p }) - 1
	if i < 0 {
		i = 0
	}
	return i
}

// ScrollToNearEdge computes the minimal new scroll offset (in pixels)
// such that visual index target becomes fully visible within a viewport
// of the given pixel length starting at scroll.
func (a *Axis) ScrollToNearEdge(scroll, viewportLen, target int) int {
	a.ensure()
	start := a.OffsetOf(target)
	end := a.OffsetOf(target + 1)
	if start < scroll {
		return start
	}
	if end > scroll+viewportLen {
		return end - viewportLen
	}
	return scroll
}

// Index is the full View Index for one frame: a row Axis and a column
// Axis, plus scroll position.
type Index struct {
	Rows    *Axis
	Cols    *Axis
	ScrollX int
	ScrollY int
}

// NewIndex builds a View Index for a frame with the given logical
// dimensions and default cell sizes.
func NewIndex(rows, cols, defaultRowHeight, defaultColWidth int) *Index {
	return &Index{
		Rows: NewAxis(rows, defaultRowHeight),
		Cols: NewAxis(cols, defaultColWidth),
	}
}

// CellAtPoint resolves a pixel point (relative to the frame's own
// origin, scroll already applied by the caller) to a visual
// (col, row) pair.
func (idx *Index) CellAtPoint(x, y int) (visualCol, visualRow int) {
	return idx.Cols.VisualAtOffset(x), idx.Rows.VisualAtOffset(y)
}

// CellOrigin returns the top-left pixel coordinate of visual (col, row)
//.
func (idx *Index) CellOrigin(visualCol, visualRow int) (x, y int) {
	return idx.Cols.OffsetOf(visualCol), idx.Rows.OffsetOf(visualRow)
}

// ScrollTo updates ScrollX/ScrollY to bring visual (col, row) onto the
// near edge of a viewport of the given pixel dimensions.
func (idx *Index) ScrollTo(viewportW, viewportH, visualCol, visualRow int) {
	idx.ScrollX = idx.Cols.ScrollToNearEdge(idx.ScrollX, viewportW, visualCol)
	idx.ScrollY = idx.Rows.ScrollToNearEdge(idx.ScrollY, viewportH, visualRow)
}
