// Package selection implements the Selection Model component: the
// active range, active cell, cursor cell, drag state machine, and
// locator-cell classification used by a Document to report selection
// state and interpret pointer input.
package selection

import "github.com/eruostudio/sheetcore/pkg/a1"

// Kind classifies a resolved SheetCell by its role in the grid: the frozen top row and left column of headers/row
// numbers are Locator cells, never Content.
type Kind int

const (
	Content Kind = iota
	TopLocator
	LeftLocator
	CornerLocator
)

// Cell is the tagged-variant resolved element at a visual position,
// mirroring the original's SheetElement/SheetCell/SheetLocatorCell
// hierarchy as a single struct with a Kind discriminator rather than a
// class chain.
type Cell struct {
	Kind Kind

	Col      int
	Row      int
	ColSpan  int
	RowSpan  int
	Width    int
	Height   int
	FrameIdx int
	RTL      bool
	BTT      bool
}

// defaultCell is the zero-size placeholder used before any selection has
// been made (mirrors SheetSelection's initial SheetCellMetadata(0,0,0)).
func defaultCell() Cell {
	return Cell{Col: 0, Row: 0, ColSpan: 0, RowSpan: 0, FrameIdx: -1}
}

// Range is an inclusive visual rectangle, col1/row1 being the anchor
// corner and col2/row2 the active (moving) corner; either corner may be
// numerically smaller.
type Range struct {
	Col1, Row1 int
	Col2, Row2 int
}

// Normalized returns the range with col1<=col2 and row1<=row2.
func (r Range) Normalized() Range {
	out := r
	if out.Col1 > out.Col2 {
		out.Col1, out.Col2 = out.Col2, out.Col1
	}
	if out.Row1 > out.Row2 {
		out.Row1, out.Row2 = out.Row2, out.Row1
	}
	return out
}

// Contains reports whether the (col,row) visual point falls within the
// normalized range, inclusive.
func (r Range) Contains(col, row int) bool {
	n := r.Normalized()
	return col >= n.Col1 && col <= n.Col2 && row >= n.Row1 && row <= n.Row2
}

// DragPhase is the Selection Model's drag state machine.
type DragPhase int

const (
	Idle DragPhase = iota
	Dragging
)

// ScrollAxis restricts auto-scroll during a drag to one axis, or both.
type ScrollAxis int

const (
	ScrollBoth ScrollAxis = iota
	ScrollX
	ScrollY
)

// Model holds the current selection state for one Document. It is
// intentionally per-Document state, not global.
type Model struct {
	ActiveRange    Range
	PreviousRange  Range
	ActiveCell     Cell
	CursorCell     Cell
	SearchRange    Range

	KeepOrder    bool
	FollowCursor bool
	AutoScroll   bool
	ScrollAxis   ScrollAxis
	RTL          bool
	BTT          bool

	Phase DragPhase
}

// New returns a Model in its initial, unselected state.
func New() *Model {
	return &Model{
		ActiveCell: defaultCell(),
		CursorCell: defaultCell(),
	}
}

// Resolver abstracts the Table Store lookups the Selection Model needs
// to classify a visual point without importing tablestore directly
// (avoids a dependency cycle; Document supplies the concrete adapter).
type Resolver interface {
	// FrameBounds returns the visual bounding box of the frame at
	// (col, row), or ok=false if no frame covers that point.
	FrameBounds(col, row int) (originCol, originRow, colSpan, rowSpan int, ok bool)
}

// SelectElementFromPoint classifies the visual (col, row) point into a
// Cell, distinguishing locator cells (row 0 / col 0 of a frame's own
// coordinate space) from content.
func SelectElementFromPoint(r Resolver, col, row int) Cell {
	if col <= 0 && row <= 0 {
		return Cell{Kind: CornerLocator, Col: col, Row: row, FrameIdx: -1}
	}

	originCol, originRow, colSpan, rowSpan, ok := r.FrameBounds(col, row)
	if !ok {
		if row <= 0 {
			return Cell{Kind: TopLocator, Col: col, Row: row, FrameIdx: -1}
		}
		if col <= 0 {
			return Cell{Kind: LeftLocator, Col: col, Row: row, FrameIdx: -1}
		}
		return Cell{Kind: Content, Col: col, Row: row, FrameIdx: -1}
	}

	intraCol := col - originCol
	intraRow := row - originRow
	switch {
	case intraRow == 0 && intraCol == 0:
		return Cell{Kind: CornerLocator, Col: col, Row: row, ColSpan: colSpan, RowSpan: rowSpan}
	case intraRow == 0:
		return Cell{Kind: TopLocator, Col: col, Row: row, ColSpan: colSpan, RowSpan: 1}
	case intraCol == 0:
		return Cell{Kind: LeftLocator, Col: col, Row: row, ColSpan: 1, RowSpan: rowSpan}
	default:
		return Cell{Kind: Content, Col: col, Row: row, ColSpan: 1, RowSpan: 1}
	}
}

// UpdateFromPosition moves the active range/cell to the given visual
// point, honoring keepOrder (extend vs replace), followCursor (move the
// cursor cell independently of the active cell, e.g. Ctrl-click). col and
// row below 1 are clamped to 1, so this never selects an entire row or
// column.
func (m *Model) UpdateFromPosition(r Resolver, col, row int, extend bool) {
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}

	cell := SelectElementFromPoint(r, col, row)
	m.PreviousRange = m.ActiveRange

	if extend && m.KeepOrder {
		m.ActiveRange.Col2 = col
		m.ActiveRange.Row2 = row
	} else {
		m.ActiveRange = Range{Col1: col, Row1: row, Col2: col, Row2: row}
	}

	if !m.FollowCursor {
		m.CursorCell = cell
	}
	m.ActiveCell = cell

	m.RTL = m.ActiveRange.Col2 < m.ActiveRange.Col1
	m.BTT = m.ActiveRange.Row2 < m.ActiveRange.Row1
}

// UpdateFromRange implements the full update_from_position(c1, r1, c2,
// r2, keep_order, ...) contract: c1==0 && r2==0, or r1==0 && c2==0, is the
// "entire sheet" special syntax and is handled by SelectAll before any
// coordinate clamping (which UpdateFromPosition applies) could destroy the
// zero signal. keepOrder false normalizes the resulting range to
// (min..max) and clears the direction flags; keepOrder true preserves
// rtl/btt as computed from the raw corners.
func (m *Model) UpdateFromRange(r Resolver, c1, r1, c2, r2 int, keepOrder bool, maxCol, maxRow int) {
	if (c1 == 0 && r2 == 0) || (r1 == 0 && c2 == 0) {
		m.SelectAll(maxCol, maxRow)
		m.ActiveCell = SelectElementFromPoint(r, 0, 0)
		m.CursorCell = m.ActiveCell
		m.RTL, m.BTT = false, false
		return
	}

	m.UpdateFromPosition(r, c1, r1, false)
	if c2 != c1 || r2 != r1 {
		prevKeep := m.KeepOrder
		m.KeepOrder = true
		m.UpdateFromPosition(r, c2, r2, true)
		m.KeepOrder = prevKeep
	}
	if !keepOrder {
		m.ActiveRange = m.ActiveRange.Normalized()
		m.RTL, m.BTT = false, false
	}
}

// BeginDrag transitions Idle -> Dragging at the given anchor point.
func (m *Model) BeginDrag(r Resolver, col, row int) {
	m.Phase = Dragging
	m.UpdateFromPosition(r, col, row, false)
}

// ContinueDrag extends the active range to the given point while
// Dragging; a no-op if not currently dragging.
func (m *Model) ContinueDrag(r Resolver, col, row int) {
	if m.Phase != Dragging {
		return
	}
	prevKeepOrder := m.KeepOrder
	m.KeepOrder = true
	m.UpdateFromPosition(r, col, row, true)
	m.KeepOrder = prevKeepOrder
}

// EndDrag transitions Dragging -> Idle.
func (m *Model) EndDrag() {
	m.Phase = Idle
}

// UpdateFromA1Name applies an already-parsed A1-style token (A1, A1:B2,
// "H" column-only, "5" row-only; see pkg/a1.ParseRange) to the selection.
// A column-only token selects the full column (row=0 convention), a
// row-only token selects the full row (col=0 convention); maxCol/maxRow
// bound the "entire" dimension since an A1 token carries no frame extent
// of its own.
func (m *Model) UpdateFromA1Name(r Resolver, parsed a1.ParsedRange, maxCol, maxRow int) {
	switch {
	case parsed.Row1 == 0 && parsed.Row2 == 0 && parsed.Col1 != 0:
		m.SelectEntireCols(parsed.Col1+1, parsed.Col2+1, maxRow)
		m.ActiveCell = SelectElementFromPoint(r, parsed.Col1+1, 1)
		m.CursorCell = m.ActiveCell
	case parsed.Col1 == 0 && parsed.Col2 == 0 && parsed.Row1 != 0:
		m.SelectEntireRows(parsed.Row1+1, parsed.Row2+1, maxCol)
		m.ActiveCell = SelectElementFromPoint(r, 1, parsed.Row1+1)
		m.CursorCell = m.ActiveCell
	default:
		m.UpdateFromPosition(r, parsed.Col1+1, parsed.Row1+1, false)
		if parsed.Col2 != parsed.Col1 || parsed.Row2 != parsed.Row1 {
			m.KeepOrder = true
			m.UpdateFromPosition(r, parsed.Col2+1, parsed.Row2+1, true)
			m.KeepOrder = false
		}
	}
}

// CheckContainsPoint reports whether the pixel point (x, y) falls inside
// the pixel rectangle (rectX, rectY, rectW, rectH) that the caller
// computed for the active range.
func CheckContainsPoint(rectX, rectY, rectW, rectH, x, y int) bool {
	return x >= rectX && x < rectX+rectW && y >= rectY && y < rectY+rectH
}

// SelectAll selects the entire addressable sheet.
func (m *Model) SelectAll(maxCol, maxRow int) {
	m.PreviousRange = m.ActiveRange
	m.ActiveRange = Range{Col1: 1, Row1: 1, Col2: maxCol, Row2: maxRow}
}

// SelectEntireRows selects rows [row1, row2] across every column.
func (m *Model) SelectEntireRows(row1, row2, maxCol int) {
	m.PreviousRange = m.ActiveRange
	m.ActiveRange = Range{Col1: 1, Row1: row1, Col2: maxCol, Row2: row2}
}

// SelectEntireCols selects columns [col1, col2] across every row.
func (m *Model) SelectEntireCols(col1, col2, maxRow int) {
	m.PreviousRange = m.ActiveRange
	m.ActiveRange = Range{Col1: col1, Row1: 1, Col2: col2, Row2: maxRow}
}
