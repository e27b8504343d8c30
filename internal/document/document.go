// Package document composes the Table Store, View Index, Selection
// Model, and History Engine into the Document façade: the
// single-threaded-per-Document command surface that a command-surface
// adapter (cmd/documentd) or an embedding program drives.
package document

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eruostudio/sheetcore/internal/frame"
	"github.com/eruostudio/sheetcore/internal/history"
	"github.com/eruostudio/sheetcore/internal/selection"
	"github.com/eruostudio/sheetcore/internal/spill"
	"github.com/eruostudio/sheetcore/internal/tablestore"
	"github.com/eruostudio/sheetcore/internal/viewindex"
	"github.com/eruostudio/sheetcore/pkg/a1"
	"github.com/eruostudio/sheetcore/pkg/coreerr"
)

const (
	defaultRowHeight = 20
	defaultColWidth  = 100
)

// Event is emitted by a Document after any operation that can change
// what's on screen. Listeners are
// synchronous; a command-surface adapter can fan these out to its own
// notification transport.
type Event struct {
	Kind        string
	ActiveRange selection.Range
	FrameIndex  int

	// CellName and CellValue are populated on EventSelectionChanged: the
	// A1 address of the active visual cell and the string form of the
	// underlying data cell (empty for null or a cell outside any frame),
	// matching the §6 SelectionChanged(cell_name, cell_value_as_string)
	// external interface.
	CellName  string
	CellValue string
}

const (
	EventSelectionChanged = "selection_changed"
	EventDataChanged      = "data_changed"
	EventStructureChanged = "structure_changed"
)

// Document is the composed engine for one open sheet. It is not safe for
// concurrent use by multiple goroutines: callers (internal/docmanager)
// serialize access per-document via WithRead/WithWrite.
type Document struct {
	store *tablestore.Store
	views []*viewindex.Index
	sel   *selection.Model
	hist  *history.Engine
	spill *spill.Store

	listeners []func(Event)
	seq       int
}

// New constructs an empty Document backed by the given spill store and
// history coalescing window. The initial Selection state is pushed onto
// the undo stack immediately so every user-visible state has an undo
// target; that record is never popped by Undo.
func New(spillStore *spill.Store, coalesceWindow time.Duration, clock history.Clock) *Document {
	d := &Document{
		store: tablestore.New(),
		sel:   selection.New(),
		hist:  history.New(coalesceWindow, clock),
		spill: spillStore,
	}
	initial := *d.sel
	d.hist.PushInitial(&selectionCommand{doc: d, before: initial, after: initial})
	return d
}

// OnEvent registers a listener invoked after every state-changing
// operation.
func (d *Document) OnEvent(fn func(Event)) {
	d.listeners = append(d.listeners, fn)
}

func (d *Document) emit(ev Event) {
	for _, fn := range d.listeners {
		fn(ev)
	}
}

func (d *Document) nextID() string {
	d.seq++
	return strconv.Itoa(d.seq)
}

// AddFrame places a new frame at the given visual origin and creates its
// View Index, returning the frame index.
func (d *Document) AddFrame(f *frame.Frame, originCol, originRow int) int {
	idx := d.store.AddFrame(f, originCol, originRow)
	d.views = append(d.views, viewindex.NewIndex(f.Height(), f.Width(), defaultRowHeight, defaultColWidth))
	return idx
}

// FrameBounds implements selection.Resolver for this Document's Table
// Store, letting the Selection Model classify points without importing
// tablestore directly.
func (d *Document) FrameBounds(col, row int) (originCol, originRow, colSpan, rowSpan int, ok bool) {
	meta := d.store.Resolve(col, row)
	if meta.FrameIndex < 0 {
		return 0, 0, 0, 0, false
	}
	b, _ := d.store.BBoxAt(meta.FrameIndex)
	return b.OriginCol, b.OriginRow, b.ColSpan, b.RowSpan, true
}

// Selection returns the live Selection Model (read-mostly; mutate only
// via the UpdateSelection family so SelectionChanged fires).
func (d *Document) Selection() *selection.Model { return d.sel }

// UpdateSelectionFromPosition moves the active selection to a visual
// point and emits SelectionChanged, coalescing with the previous
// Selection command in the history if it happened within the coalescing
// window.
func (d *Document) UpdateSelectionFromPosition(col, row int, extend bool) {
	before := *d.sel
	d.sel.UpdateFromPosition(d, col, row, extend)
	after := *d.sel
	if !d.hist.IsChanging() {
		d.hist.Push(&selectionCommand{doc: d, before: before, after: after})
	}
	d.emit(d.selectionChangedEvent())
}

// selectionChangedEvent builds the §6 SelectionChanged(cell_name,
// cell_value_as_string) notification for the current active cell.
func (d *Document) selectionChangedEvent() Event {
	cell := d.sel.ActiveCell
	ev := Event{Kind: EventSelectionChanged, ActiveRange: d.sel.ActiveRange, CellName: a1.CellName(cell.Col-1, cell.Row-1)}
	meta := d.store.Resolve(cell.Col, cell.Row)
	if meta.FrameIndex >= 0 {
		ev.FrameIndex = meta.FrameIndex
		if v, _, ok := d.store.Read(meta.FrameIndex, meta.Col, meta.Row, 1, 1); ok && !v.IsNull {
			ev.CellValue = v.String()
		}
	}
	return ev
}

// UpdateSelectionFromA1Name parses an A1-style token (A1, A1:B2, column-only
// "H", row-only "5") and applies it as the active selection, emitting
// SelectionChanged. Returns false (no-op, selection unchanged) if the
// token cannot be parsed, per the §7 Parse error kind.
func (d *Document) UpdateSelectionFromA1Name(name string) bool {
	parsed, ok := a1.ParseRange(name)
	if !ok {
		return false
	}
	before := *d.sel
	d.sel.UpdateFromA1Name(d, parsed, d.maxAddressableCol(), d.maxAddressableRow())
	after := *d.sel
	if !d.hist.IsChanging() {
		d.hist.Push(&selectionCommand{doc: d, before: before, after: after})
	}
	d.emit(d.selectionChangedEvent())
	return true
}

// UpdateSelectionFromRange implements the full update_from_position(c1,
// r1, c2, r2, keep_order, ...) contract, including the "entire sheet"
// special syntax (c1==r2==0 or r1==c2==0), emitting SelectionChanged.
func (d *Document) UpdateSelectionFromRange(c1, r1, c2, r2 int, keepOrder bool) {
	before := *d.sel
	d.sel.UpdateFromRange(d, c1, r1, c2, r2, keepOrder, d.maxAddressableCol(), d.maxAddressableRow())
	after := *d.sel
	if !d.hist.IsChanging() {
		d.hist.Push(&selectionCommand{doc: d, before: before, after: after})
	}
	d.emit(d.selectionChangedEvent())
}

// SelectEntireSheet selects every addressable cell, per the
// update_from_position "entire sheet" special syntax.
func (d *Document) SelectEntireSheet() {
	d.UpdateSelectionFromRange(0, 1, 1, 0, false)
}

// maxAddressableCol/maxAddressableRow bound "entire column"/"entire row"
// selections to the rightmost/bottommost edge of any placed frame.
func (d *Document) maxAddressableCol() int {
	max := 1
	for i := 0; i < d.store.FrameCount(); i++ {
		if b, ok := d.store.BBoxAt(i); ok && b.OriginCol+b.ColSpan-1 > max {
			max = b.OriginCol + b.ColSpan - 1
		}
	}
	return max
}

func (d *Document) maxAddressableRow() int {
	max := 1
	for i := 0; i < d.store.FrameCount(); i++ {
		if b, ok := d.store.BBoxAt(i); ok && b.OriginRow+b.RowSpan-1 > max {
			max = b.OriginRow + b.RowSpan - 1
		}
	}
	return max
}

type selectionCommand struct {
	doc    *Document
	before selection.Model
	after  selection.Model
}

func (c *selectionCommand) Kind() string { return "selection" }
func (c *selectionCommand) Undo() error {
	*c.doc.sel = c.before
	c.doc.emit(c.doc.selectionChangedEvent())
	return nil
}
func (c *selectionCommand) Redo() error {
	*c.doc.sel = c.after
	c.doc.emit(c.doc.selectionChangedEvent())
	return nil
}
func (c *selectionCommand) Release() {}

// CoalesceWith merges a subsequent Selection command into this one by
// keeping `before` and adopting the new `after`.
func (c *selectionCommand) CoalesceWith(other history.Command) bool {
	o, ok := other.(*selectionCommand)
	if !ok {
		return false
	}
	c.after = o.after
	return true
}

// snapshotCommand is the generic data/structure-mutation undo unit: it
// captures the whole frame (and its BBox) before and after a mutation
// and restores by wholesale replacement. Large frames may be spilled to
// disk via store Document's spill.Store rather than held twice in memory
//.
type snapshotCommand struct {
	doc        *Document
	kind       string
	frameIndex int

	beforeID  string
	afterID   string
	beforeMem *frame.Frame
	afterMem  *frame.Frame
	beforeBB  tablestore.BBox
	afterBB   tablestore.BBox
	spilled   bool
}

const spillThresholdCells = 50_000

func (d *Document) newSnapshotCommand(kind string, frameIndex int, before *frame.Frame, beforeBB tablestore.BBox) *snapshotCommand {
	c := &snapshotCommand{doc: d, kind: kind, frameIndex: frameIndex, beforeBB: beforeBB}
	if d.spill != nil && before.Width()*before.Height() > spillThresholdCells {
		id := d.nextID() + "-before"
		if err := d.spill.Write(id, before); err == nil {
			c.beforeID = id
			c.spilled = true
			return c
		}
	}
	c.beforeMem = before
	return c
}

func (c *snapshotCommand) captureAfter(after *frame.Frame, afterBB tablestore.BBox) {
	c.afterBB = afterBB
	if c.spilled && c.doc.spill != nil {
		id := c.doc.nextID() + "-after"
		if err := c.doc.spill.Write(id, after); err == nil {
			c.afterID = id
			return
		}
	}
	c.afterMem = after
}

func (c *snapshotCommand) loadBefore() (*frame.Frame, error) {
	if c.beforeMem != nil {
		return c.beforeMem, nil
	}
	return c.doc.spill.Read(c.beforeID)
}

func (c *snapshotCommand) loadAfter() (*frame.Frame, error) {
	if c.afterMem != nil {
		return c.afterMem, nil
	}
	return c.doc.spill.Read(c.afterID)
}

func (c *snapshotCommand) Kind() string { return c.kind }

func (c *snapshotCommand) Undo() error {
	f, err := c.loadBefore()
	if err != nil {
		return err
	}
	c.doc.store.ReplaceFrame(c.frameIndex, f, c.beforeBB)
	c.doc.emit(Event{Kind: EventStructureChanged, FrameIndex: c.frameIndex})
	return nil
}

func (c *snapshotCommand) Redo() error {
	f, err := c.loadAfter()
	if err != nil {
		return err
	}
	c.doc.store.ReplaceFrame(c.frameIndex, f, c.afterBB)
	c.doc.emit(Event{Kind: EventStructureChanged, FrameIndex: c.frameIndex})
	return nil
}

func (c *snapshotCommand) Release() {
	if c.beforeID != "" {
		c.doc.spill.Remove(c.beforeID)
	}
	if c.afterID != "" {
		c.doc.spill.Remove(c.afterID)
	}
}

func (d *Document) record(kind string, frameIndex int, mutate func() bool) bool {
	f := d.store.Frame(frameIndex)
	if f == nil {
		return false
	}
	beforeBB, _ := d.store.BBoxAt(frameIndex)
	before := f.Clone()
	cmd := d.newSnapshotCommand(kind, frameIndex, before, beforeBB)

	if !mutate() {
		return false
	}

	afterBB, _ := d.store.BBoxAt(frameIndex)
	after := d.store.Frame(frameIndex).Clone()
	cmd.captureAfter(after, afterBB)

	if !d.hist.IsChanging() {
		d.hist.Push(cmd)
	}
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: frameIndex})
	return true
}

// InsertBlankRows inserts span blank rows at atRow in frameIndex
//.
func (d *Document) InsertBlankRows(frameIndex, atRow, span int) bool {
	return d.record("insert_rows", frameIndex, func() bool {
		return d.store.InsertRowsBlank(frameIndex, atRow, span)
	})
}

// InsertBlankCols inserts span blank columns at atCol in frameIndex; left
// mirrors the Table Store's descending-numbering convention so auto-named
// columns still read left-to-right on screen.
func (d *Document) InsertBlankCols(frameIndex, atCol, span int, left bool) bool {
	return d.record("insert_cols", frameIndex, func() bool {
		return d.store.InsertColsBlank(frameIndex, atCol, span, left)
	})
}

// DuplicateCurrentRows duplicates the rows spanned by the active range,
// inserting the copy immediately after the original block.
func (d *Document) DuplicateCurrentRows(frameIndex int) bool {
	r := d.sel.ActiveRange.Normalized()
	span := r.Row2 - r.Row1 + 1
	meta := d.store.Resolve(r.Col1, r.Row1)
	if meta.FrameIndex != frameIndex || meta.Row < 1 {
		return false
	}
	// meta.Row is header-inclusive (0 = header); DuplicateRows wants the
	// 0-based data row, matching InsertRowsBlank's convention.
	dataRow := meta.Row - 1
	return d.record("duplicate_rows", frameIndex, func() bool {
		return d.store.DuplicateRows(frameIndex, dataRow, span)
	})
}

// DuplicateCurrentCols duplicates the columns spanned by the active range.
func (d *Document) DuplicateCurrentCols(frameIndex int, left bool) bool {
	r := d.sel.ActiveRange.Normalized()
	span := r.Col2 - r.Col1 + 1
	meta := d.store.Resolve(r.Col1, r.Row1)
	if meta.FrameIndex != frameIndex {
		return false
	}
	return d.record("duplicate_cols", frameIndex, func() bool {
		return d.store.DuplicateCols(frameIndex, meta.Col, span, left)
	})
}

// DeleteCurrentRows deletes the rows spanned by the current active range
// in frameIndex.
func (d *Document) DeleteCurrentRows(frameIndex int) bool {
	r := d.sel.ActiveRange.Normalized()
	span := r.Row2 - r.Row1 + 1
	bb, ok := d.store.BBoxAt(frameIndex)
	if !ok {
		return false
	}
	// DeleteRows takes a header-inclusive intra-frame row (0 = header,
	// which sits at the frame's origin row).
	atRow := r.Row1 - bb.OriginRow
	return d.record("delete_rows", frameIndex, func() bool {
		_, _, ok := d.store.DeleteRows(frameIndex, atRow, span)
		return ok
	})
}

// DeleteCurrentCols deletes the columns spanned by the current active
// range in frameIndex.
func (d *Document) DeleteCurrentCols(frameIndex int) bool {
	r := d.sel.ActiveRange.Normalized()
	span := r.Col2 - r.Col1 + 1
	meta := d.store.Resolve(r.Col1, r.Row1)
	if meta.FrameIndex != frameIndex {
		return false
	}
	return d.record("delete_cols", frameIndex, func() bool {
		return d.store.DeleteCols(frameIndex, meta.Col, span)
	})
}

// axisCommand is the undo unit for View Index Axis mutations (hide,
// unhide, unhide-all) that the Table Store has no concept of: it swaps
// the whole Axis (visibility plus size overrides) between a before and
// after snapshot rather than replaying the mutation in reverse.
type axisCommand struct {
	doc     *Document
	kind    string
	viewIdx int
	cols    bool // true: views[viewIdx].Cols: false: views[viewIdx].Rows
	before  *viewindex.Axis
	after   *viewindex.Axis
}

func (c *axisCommand) slot() *(*viewindex.Axis) {
	if c.cols {
		return &c.doc.views[c.viewIdx].Cols
	}
	return &c.doc.views[c.viewIdx].Rows
}

func (c *axisCommand) Kind() string { return c.kind }

func (c *axisCommand) Undo() error {
	*c.slot() = c.before
	c.doc.emit(Event{Kind: EventStructureChanged, FrameIndex: c.viewIdx})
	return nil
}

func (c *axisCommand) Redo() error {
	*c.slot() = c.after
	c.doc.emit(Event{Kind: EventStructureChanged, FrameIndex: c.viewIdx})
	return nil
}

func (c *axisCommand) Release() {}

func (d *Document) pushAxisCommand(kind string, viewIdx int, cols bool, before, after *viewindex.Axis) {
	if d.hist.IsChanging() {
		return
	}
	d.hist.Push(&axisCommand{doc: d, kind: kind, viewIdx: viewIdx, cols: cols, before: before, after: after})
}

// HideCurrentRows hides the rows spanned by the active range in the
// given view index, returning the hidden sizes for an explicit unhide.
func (d *Document) HideCurrentRows(viewIdx int) []int {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return nil
	}
	bb, ok := d.store.BBoxAt(viewIdx)
	if !ok {
		return nil
	}
	before := d.views[viewIdx].Rows.Clone()
	r := d.sel.ActiveRange.Normalized()
	// The Rows axis holds data rows only; the header sits at the frame's
	// origin row, so data row 0 is one visual row below it.
	sizes := d.views[viewIdx].Rows.HideRange(r.Row1-bb.OriginRow-1, r.Row2-r.Row1+1)
	d.pushAxisCommand("hide_rows", viewIdx, false, before, d.views[viewIdx].Rows.Clone())
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: viewIdx})
	return sizes
}

// UnhideRows reveals rows [at, at+span) in the given view index,
// restoring sizes when provided.
func (d *Document) UnhideRows(viewIdx, at, span int, sizes []int) {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return
	}
	before := d.views[viewIdx].Rows.Clone()
	d.views[viewIdx].Rows.UnhideRange(at, span, sizes)
	d.pushAxisCommand("unhide_rows", viewIdx, false, before, d.views[viewIdx].Rows.Clone())
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: viewIdx})
}

// UnhideAllRows reveals every hidden row in the given view index.
func (d *Document) UnhideAllRows(viewIdx int) {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return
	}
	before := d.views[viewIdx].Rows.Clone()
	d.views[viewIdx].Rows.UnhideAll()
	d.pushAxisCommand("unhide_all_rows", viewIdx, false, before, d.views[viewIdx].Rows.Clone())
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: viewIdx})
}

// HideCurrentCols hides the columns spanned by the active range in the
// given view index, returning the hidden widths for an explicit unhide.
func (d *Document) HideCurrentCols(viewIdx int) []int {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return nil
	}
	before := d.views[viewIdx].Cols.Clone()
	r := d.sel.ActiveRange.Normalized()
	sizes := d.views[viewIdx].Cols.HideRange(r.Col1-1, r.Col2-r.Col1+1)
	d.pushAxisCommand("hide_cols", viewIdx, true, before, d.views[viewIdx].Cols.Clone())
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: viewIdx})
	return sizes
}

// UnhideCols reveals columns [at, at+span) in the given view index,
// restoring sizes when provided.
func (d *Document) UnhideCols(viewIdx, at, span int, sizes []int) {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return
	}
	before := d.views[viewIdx].Cols.Clone()
	d.views[viewIdx].Cols.UnhideRange(at, span, sizes)
	d.pushAxisCommand("unhide_cols", viewIdx, true, before, d.views[viewIdx].Cols.Clone())
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: viewIdx})
}

// UnhideAllCols reveals every hidden column in the given view index.
func (d *Document) UnhideAllCols(viewIdx int) {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return
	}
	before := d.views[viewIdx].Cols.Clone()
	d.views[viewIdx].Cols.UnhideAll()
	d.pushAxisCommand("unhide_all_cols", viewIdx, true, before, d.views[viewIdx].Cols.Clone())
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: viewIdx})
}

// filterCommand is the undo unit for FilterCurrentRows: it restores both
// the Table Store's conjoined filter expression and the view's row
// visibility, since the two must move together.
type filterCommand struct {
	doc        *Document
	frameIndex int
	viewIdx    int
	beforeExpr *frame.FilterExpr
	afterExpr  *frame.FilterExpr
	beforeRows *viewindex.Axis
	afterRows  *viewindex.Axis
}

func (c *filterCommand) Kind() string { return "filter_rows" }

func (c *filterCommand) Undo() error {
	c.doc.store.SetFilterExpr(c.frameIndex, c.beforeExpr)
	c.doc.views[c.viewIdx].Rows = c.beforeRows
	c.doc.emit(Event{Kind: EventStructureChanged, FrameIndex: c.frameIndex})
	return nil
}

func (c *filterCommand) Redo() error {
	c.doc.store.SetFilterExpr(c.frameIndex, c.afterExpr)
	c.doc.views[c.viewIdx].Rows = c.afterRows
	c.doc.emit(Event{Kind: EventStructureChanged, FrameIndex: c.frameIndex})
	return nil
}

func (c *filterCommand) Release() {}

// FilterCurrentRows applies a `column == value` filter using the value at
// column col, data row row (both 0-based) as the reference value,
// updating the view's visibility mask in place.
func (d *Document) FilterCurrentRows(frameIndex, viewIdx, col, row int) bool {
	if viewIdx < 0 || viewIdx >= len(d.views) {
		return false
	}
	beforeExpr := d.store.FilterExpr(frameIndex)
	beforeRows := d.views[viewIdx].Rows.Clone()

	mask := d.store.FilterMask(frameIndex, col, row)
	if mask == nil {
		return false
	}
	// mask[0] is the always-visible header bit; the Rows axis models data
	// rows only, so it is not part of the visibility mask passed down.
	d.views[viewIdx].Rows.SetVisibilityMask(mask[1:])

	if !d.hist.IsChanging() {
		d.hist.Push(&filterCommand{
			doc: d, frameIndex: frameIndex, viewIdx: viewIdx,
			beforeExpr: beforeExpr, afterExpr: d.store.FilterExpr(frameIndex),
			beforeRows: beforeRows, afterRows: d.views[viewIdx].Rows.Clone(),
		})
	}
	d.emit(Event{Kind: EventStructureChanged, FrameIndex: frameIndex})
	return true
}

// sortCommand is the undo unit for SortCurrentRows: it inverts the
// permutation Table Store's Sort applied (rather than re-cloning the
// whole frame) and swaps the view's row axis back to its pre-sort
// snapshot.
type sortCommand struct {
	doc        *Document
	frameIndex int
	viewIdx    int
	descending bool
	perm       []int // old data-row index for each new data-row index
	invPerm    []int
	beforeRows *viewindex.Axis
	afterRows  *viewindex.Axis
}

func (c *sortCommand) Kind() string { return "sort_rows" }

func (c *sortCommand) Undo() error {
	if f := c.doc.store.Frame(c.frameIndex); f != nil {
		f.Permute(c.invPerm)
	}
	if c.viewIdx >= 0 && c.viewIdx < len(c.doc.views) {
		c.doc.views[c.viewIdx].Rows = c.beforeRows
	}
	c.doc.emit(Event{Kind: EventDataChanged, FrameIndex: c.frameIndex})
	return nil
}

func (c *sortCommand) Redo() error {
	if f := c.doc.store.Frame(c.frameIndex); f != nil {
		f.Permute(c.perm)
	}
	if c.viewIdx >= 0 && c.viewIdx < len(c.doc.views) {
		c.doc.views[c.viewIdx].Rows = c.afterRows
	}
	c.doc.emit(Event{Kind: EventDataChanged, FrameIndex: c.frameIndex})
	return nil
}

func (c *sortCommand) Release() {}

func invertPermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		inv[oldIdx] = newIdx
	}
	return inv
}

// SortCurrentRows stably sorts frameIndex by col and permutes the view's
// row visibility mask to track the reordered rows.
func (d *Document) SortCurrentRows(frameIndex, viewIdx, col int, descending bool) bool {
	var beforeRows *viewindex.Axis
	if viewIdx >= 0 && viewIdx < len(d.views) {
		beforeRows = d.views[viewIdx].Rows.Clone()
	}

	perm := d.store.Sort(frameIndex, col, descending)
	if perm == nil {
		return false
	}

	var afterRows *viewindex.Axis
	if viewIdx >= 0 && viewIdx < len(d.views) {
		d.views[viewIdx].Rows = permuteRowAxis(d.views[viewIdx].Rows, perm)
		afterRows = d.views[viewIdx].Rows.Clone()
	}

	if !d.hist.IsChanging() {
		d.hist.Push(&sortCommand{
			doc: d, frameIndex: frameIndex, viewIdx: viewIdx, descending: descending,
			perm: perm, invPerm: invertPermutation(perm),
			beforeRows: beforeRows, afterRows: afterRows,
		})
	}
	d.emit(Event{Kind: EventDataChanged, FrameIndex: frameIndex})
	return true
}

func permuteRowAxis(old *viewindex.Axis, perm []int) *viewindex.Axis {
	na := viewindex.NewAxis(len(perm), 1)
	inverse := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		inverse[oldIdx] = newIdx
	}
	for oldIdx := 0; oldIdx < len(perm); oldIdx++ {
		newIdx := inverse[oldIdx]
		na.SetSize(newIdx, old.Size(oldIdx))
		if old.IsHidden(oldIdx) {
			na.HideRange(newIdx, 1)
		}
	}
	return na
}

// CastColumns casts [atCol, atCol+span) in frameIndex to dtype
// atomically.
func (d *Document) CastColumns(frameIndex, atCol, span int, dtype frame.DType, precision, scale int32) bool {
	return d.record("cast_columns", frameIndex, func() bool {
		return d.store.CastColumns(frameIndex, atCol, span, dtype, precision, scale)
	})
}

// ReadBlock returns the frame's columns restricted to [row, row+rowSpan)
// starting at intra-frame column col (rowSpan<0 means the whole column),
// delegating to the Table Store. row is 1-based
// (1 = first data row); col is 0-based. A row below 1 (the header row)
// is clipped to 1 and rowSpan shrinks by the rows clipped off.
func (d *Document) ReadBlock(frameIndex, col, row, colSpan, rowSpan int) *frame.Frame {
	f := d.store.Frame(frameIndex)
	if f == nil {
		return nil
	}
	if row < 1 && rowSpan >= 0 {
		rowSpan += row - 1
		if rowSpan < 0 {
			rowSpan = 0
		}
		row = 1
	}
	names := f.ColumnNames()
	end := col + colSpan
	if end > len(names) {
		end = len(names)
	}
	if col > end {
		col = end
	}
	return d.store.ReadBlock(frameIndex, names[col:end], row-1, rowSpan)
}

// Update applies a replacer to the given visual cell/range, recording an
// undoable snapshot.
func (d *Document) Update(frameIndex, col, row, colSpan, rowSpan int, r tablestore.Replacer) bool {
	return d.record("update", frameIndex, func() bool {
		return d.store.Update(frameIndex, col, row, colSpan, rowSpan, r)
	})
}

// Undo reverses the most recent command.
func (d *Document) Undo() (bool, error) { return d.hist.Undo() }

// Redo reapplies the most recently undone command.
func (d *Document) Redo() (bool, error) { return d.hist.Redo() }

// CanUndo / CanRedo expose the engine's stack state for UI enablement.
func (d *Document) CanUndo() bool { return d.hist.CanUndo() }
func (d *Document) CanRedo() bool { return d.hist.CanRedo() }

// Match is one search hit within a frame.
type Match struct {
	FrameIndex int
	Col        int
	Row        int
	Value      string
}

// compileFindPattern builds the (?i)?pattern regular expression used by
// useRegexp mode, folding the case-insensitive flag in when matchCase is
// false rather than leaving case handling to the caller.
func compileFindPattern(pattern string, matchCase bool) (*regexp.Regexp, *coreerr.Error) {
	expr := pattern
	if !matchCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, coreerr.New(coreerr.Parse, "invalid regular expression %q: %v", pattern, err)
	}
	return re, nil
}

// FindInCurrentTable scans frameIndex's string (Utf8) data cells for
// pattern, restricted to the given view index's currently visible rows
// and columns, returning up to limit matches starting after the given
// (col,row) cursor position (exclusive), in row-major order.
//
// matchCell requires exact cell equality rather than a substring;
// useRegexp compiles pattern as a (?i)?pattern regular expression instead
// (matchCell is ignored when useRegexp is set); withinSelection restricts
// the scan to the Document's active range. Returns a *coreerr.Error
// (Parse) if useRegexp is set and pattern fails to compile, or
// ErrFrameNotFound if frameIndex has no backing frame.
func (d *Document) FindInCurrentTable(frameIndex, viewIdx int, pattern string, matchCase, matchCell, useRegexp, withinSelection bool, afterCol, afterRow, limit int) (matches []Match, nextCol, nextRow int, hasMore bool, cerr *coreerr.Error) {
	f := d.store.Frame(frameIndex)
	if f == nil {
		return nil, 0, 0, false, ErrFrameNotFound
	}

	var re *regexp.Regexp
	if useRegexp {
		var err *coreerr.Error
		re, err = compileFindPattern(pattern, matchCase)
		if err != nil {
			return nil, 0, 0, false, err
		}
	}
	needle := pattern
	if !matchCase {
		needle = strings.ToLower(needle)
	}

	var view *viewindex.Index
	if viewIdx >= 0 && viewIdx < len(d.views) {
		view = d.views[viewIdx]
	}
	bb, _ := d.store.BBoxAt(frameIndex)
	var sel *selection.Range
	if withinSelection {
		r := d.sel.ActiveRange.Normalized()
		sel = &r
	}

	width := f.Width()
	height := f.Height()
	startRow, startCol := afterRow, afterCol+1
	for row := startRow; row < height; row++ {
		if view != nil && view.Rows.IsHidden(row) {
			continue
		}
		colStart := 0
		if row == startRow {
			colStart = startCol
		}
		for col := colStart; col < width; col++ {
			if view != nil && view.Cols.IsHidden(col) {
				continue
			}
			if sel != nil && !sel.Contains(bb.OriginCol+col, bb.OriginRow+row+1) {
				continue
			}
			colObj := f.ColumnAt(col)
			if colObj == nil || colObj.Type != frame.DTypeUtf8 {
				continue
			}
			v, ok := f.Get(col, row)
			if !ok || v.IsNull {
				continue
			}

			var hit bool
			switch {
			case useRegexp:
				hit = re.MatchString(v.Str)
			case matchCell:
				if matchCase {
					hit = v.Str == pattern
				} else {
					hit = strings.EqualFold(v.Str, pattern)
				}
			default:
				hay := v.Str
				if !matchCase {
					hay = strings.ToLower(hay)
				}
				hit = strings.Contains(hay, needle)
			}
			if !hit {
				continue
			}

			matches = append(matches, Match{FrameIndex: frameIndex, Col: col, Row: row, Value: v.Str})
			if len(matches) >= limit {
				return matches, col, row, col < width-1 || row < height-1, nil
			}
		}
	}
	return matches, 0, 0, false, nil
}

// ReplaceAllInCurrentTable replaces matches of pattern with replacement
// across frameIndex's Utf8 data cells, honoring the same matchCell,
// useRegexp and withinSelection modes as FindInCurrentTable (hidden rows
// and columns are not excluded here, since a replace is not a view
// operation); returns the number of cells changed.
func (d *Document) ReplaceAllInCurrentTable(frameIndex int, pattern, replacement string, matchCase, matchCell, useRegexp, withinSelection bool) (int, *coreerr.Error) {
	f := d.store.Frame(frameIndex)
	if f == nil {
		return 0, ErrFrameNotFound
	}

	var re *regexp.Regexp
	if useRegexp {
		var err *coreerr.Error
		re, err = compileFindPattern(pattern, matchCase)
		if err != nil {
			return 0, err
		}
	}

	bb, _ := d.store.BBoxAt(frameIndex)
	var sel *selection.Range
	if withinSelection {
		r := d.sel.ActiveRange.Normalized()
		sel = &r
	}

	count := 0
	d.record("replace_all", frameIndex, func() bool {
		for col := 0; col < f.Width(); col++ {
			colObj := f.ColumnAt(col)
			if colObj.Type != frame.DTypeUtf8 {
				continue
			}
			for row := 0; row < f.Height(); row++ {
				if sel != nil && !sel.Contains(bb.OriginCol+col, bb.OriginRow+row+1) {
					continue
				}
				v, ok := f.Get(col, row)
				if !ok || v.IsNull {
					continue
				}

				var newStr string
				var changed bool
				switch {
				case useRegexp:
					newStr = re.ReplaceAllString(v.Str, replacement)
					changed = newStr != v.Str
				case matchCell:
					eq := v.Str == pattern
					if !matchCase {
						eq = strings.EqualFold(v.Str, pattern)
					}
					if eq {
						newStr, changed = replacement, true
					}
				default:
					if matchCase {
						newStr = strings.ReplaceAll(v.Str, pattern, replacement)
					} else {
						newStr = replaceAllCI(v.Str, pattern, replacement)
					}
					changed = newStr != v.Str
				}
				if changed {
					f.Set(col, row, frame.Utf8Value(newStr))
					count++
				}
			}
		}
		return count > 0
	})
	return count, nil
}

func replaceAllCI(s, pattern, replacement string) string {
	if pattern == "" {
		return s
	}
	lower := strings.ToLower(s)
	lowerP := strings.ToLower(pattern)
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(lower[i:], lowerP)
		if idx < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+idx])
		b.WriteString(replacement)
		i += idx + len(pattern)
	}
	return b.String()
}

// Close releases all spill resources associated with this Document's
// history.
func (d *Document) Close() {
	d.hist.Clear()
}

// ErrFrameNotFound is returned by FindInCurrentTable and
// ReplaceAllInCurrentTable when the requested frame index does not exist.
var ErrFrameNotFound = coreerr.New(coreerr.OutOfRange, "frame not found")
