// Package tablestore implements the Table Store component: a list
// of Frames and their visual bounding boxes, with the visual-to-logical
// coordinate resolver and every structural mutation (insert/delete/
// duplicate/cast/sort/filter) the Document composes into user commands.
//
// It is a registry of handles (here, Frames) guarded by simple accessor
// methods, holding typed in-memory Frames directly since the Table Store
// is the core's own data plane, not an I/O wrapper.
package tablestore

import (
	"strings"

	"github.com/eruostudio/sheetcore/internal/frame"
)

// BBox is a Frame's placement in the unbounded visual grid.
// RowSpan includes the header row.
type BBox struct {
	OriginCol int
	OriginRow int
	ColSpan   int
	RowSpan   int
}

// CellMetadata is the resolved (frame-index, intra-col, intra-row) triple
// for a visual cell, or {-1,-1,-1} when the cell has no underlying frame
//.
type CellMetadata struct {
	FrameIndex int
	Col        int
	Row        int
}

// NoFrame is the sentinel CellMetadata for visual cells outside any BBox.
var NoFrame = CellMetadata{FrameIndex: -1, Col: -1, Row: -1}

// Store holds every Frame currently placed in the grid, their bounding
// boxes, and any active filter expression per frame.
type Store struct {
	frames  []*frame.Frame
	bboxes  []BBox
	filters []*frame.FilterExpr
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// AddFrame places f at the given origin, deriving its BBox from the
// frame's own width/height (header row included in RowSpan).
func (s *Store) AddFrame(f *frame.Frame, originCol, originRow int) int {
	s.frames = append(s.frames, f)
	s.bboxes = append(s.bboxes, BBox{
		OriginCol: originCol,
		OriginRow: originRow,
		ColSpan:   f.Width(),
		RowSpan:   f.Height() + 1,
	})
	s.filters = append(s.filters, nil)
	return len(s.frames) - 1
}

// ReplaceFrame swaps the frame at idx wholesale, used by the History
// Engine to restore a snapshot on undo/redo without re-deriving the
// BBox (the caller supplies it since span may have changed).
func (s *Store) ReplaceFrame(idx int, f *frame.Frame, b BBox) bool {
	if idx < 0 || idx >= len(s.frames) {
		return false
	}
	s.frames[idx] = f
	s.bboxes[idx] = b
	return true
}

// RemoveFrame destroys the frame at idx and its BBox/filter.
func (s *Store) RemoveFrame(idx int) bool {
	if idx < 0 || idx >= len(s.frames) {
		return false
	}
	s.frames = append(s.frames[:idx], s.frames[idx+1:]...)
	s.bboxes = append(s.bboxes[:idx], s.bboxes[idx+1:]...)
	s.filters = append(s.filters[:idx], s.filters[idx+1:]...)
	return true
}

// FrameCount returns the number of frames currently held.
func (s *Store) FrameCount() int { return len(s.frames) }

// Frame returns the frame at idx, or nil when out of range.
func (s *Store) Frame(idx int) *frame.Frame {
	if idx < 0 || idx >= len(s.frames) {
		return nil
	}
	return s.frames[idx]
}

// BBoxAt returns the bounding box for frame idx.
func (s *Store) BBoxAt(idx int) (BBox, bool) {
	if idx < 0 || idx >= len(s.bboxes) {
		return BBox{}, false
	}
	return s.bboxes[idx], true
}

// SetBBox overwrites the bounding box for frame idx (used after visible
// row/col span changes, e.g. filtering or hiding).
func (s *Store) SetBBox(idx int, b BBox) {
	if idx >= 0 && idx < len(s.bboxes) {
		s.bboxes[idx] = b
	}
}

// FilterExpr returns the active filter expression for frame idx, if any.
func (s *Store) FilterExpr(idx int) *frame.FilterExpr {
	if idx < 0 || idx >= len(s.filters) {
		return nil
	}
	return s.filters[idx]
}

// SetFilterExpr overwrites the active filter expression for frame idx.
func (s *Store) SetFilterExpr(idx int, expr *frame.FilterExpr) {
	if idx >= 0 && idx < len(s.filters) {
		s.filters[idx] = expr
	}
}

// Resolve returns the frame containing the visual cell, with intra-frame
// coordinates. Locator cells ((0,_) and (_,0)) are clamped here to
// (1,_)/(_,1) before the lookup.
func (s *Store) Resolve(visualCol, visualRow int) CellMetadata {
	col := visualCol
	row := visualRow
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}
	for i, b := range s.bboxes {
		f := s.frames[i]
		if col >= b.OriginCol && col < b.OriginCol+f.Width() &&
			row >= b.OriginRow && row < b.OriginRow+f.Height()+1 {
			return CellMetadata{FrameIndex: i, Col: col - b.OriginCol, Row: row - b.OriginRow}
		}
	}
	return NoFrame
}

// Read returns a single CellValue when both spans are 1, else a sub-Frame
// block preserving types. row==0 reads headers: a Utf8 value holding the
// column name when colSpan is 1, otherwise the selected columns whole
// (rowSpan is not applied; the block's column names are the headers);
// row>0 reads data at row-1.
func (s *Store) Read(frameIndex, col, row, colSpan, rowSpan int) (value frame.CellValue, block *frame.Frame, ok bool) {
	f := s.Frame(frameIndex)
	if f == nil {
		return frame.CellValue{}, nil, false
	}
	if row == 0 {
		names := f.ColumnNames()
		end := col + colSpan
		if end > len(names) {
			end = len(names)
		}
		if col >= end {
			return frame.CellValue{}, nil, false
		}
		if colSpan == 1 {
			return frame.Utf8Value(names[col]), nil, true
		}
		return frame.CellValue{}, f.SelectColumns(names[col:end]), true
	}
	dataRow := row - 1
	if colSpan == 1 && rowSpan == 1 {
		v, ok := f.Get(col, dataRow)
		return v, nil, ok
	}
	sub := f.SliceRows(dataRow, rowSpan)
	names := f.ColumnNames()
	end := col + colSpan
	if end > len(names) {
		end = len(names)
	}
	if col > end {
		col = end
	}
	return frame.CellValue{}, sub.SelectColumns(names[col:end]), true
}

// ReadBlock returns the named columns restricted to [row, row+rowSpan)
// (rowSpan<0 means the whole column).
func (s *Store) ReadBlock(frameIndex int, columnNames []string, row, rowSpan int) *frame.Frame {
	f := s.Frame(frameIndex)
	if f == nil {
		return nil
	}
	block := f.SelectColumns(columnNames)
	if rowSpan < 0 {
		return block
	}
	return block.SliceRows(row, rowSpan)
}

// InsertRowsBlank inserts rowSpan null rows at atRow and grows the BBox.
func (s *Store) InsertRowsBlank(frameIndex, atRow, rowSpan int) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	f.InsertRowsBlank(atRow, rowSpan)
	b := s.bboxes[frameIndex]
	b.RowSpan += rowSpan
	s.bboxes[frameIndex] = b
	return true
}

// InsertRowsFromBlock inserts block's rows at atRow.
func (s *Store) InsertRowsFromBlock(frameIndex int, block *frame.Frame, atRow int) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	if !f.InsertRowsFromBlock(block, atRow) {
		return false
	}
	b := s.bboxes[frameIndex]
	b.RowSpan += block.Height()
	s.bboxes[frameIndex] = b
	return true
}

// InsertColsBlank inserts span blank columns at atCol.
func (s *Store) InsertColsBlank(frameIndex, atCol, span int, left bool) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	f.InsertColsBlank(atCol, span, left)
	b := s.bboxes[frameIndex]
	b.ColSpan += span
	s.bboxes[frameIndex] = b
	return true
}

// InsertColsFromBlock inserts block's columns at atCol.
func (s *Store) InsertColsFromBlock(frameIndex int, block *frame.Frame, atCol int) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	f.InsertColsFromBlock(block, atCol)
	b := s.bboxes[frameIndex]
	b.ColSpan += block.Width()
	s.bboxes[frameIndex] = b
	return true
}

// DeleteRows removes rowSpan rows at atRow. Row 0 (header) is never
// deleted: if the range starts at 0 it is clipped to begin at row 1,
// reducing rowSpan by 1. Returns the actually-applied
// (atRow, rowSpan) so callers can capture the exact inverse.
func (s *Store) DeleteRows(frameIndex, atRow, rowSpan int) (appliedAt, appliedSpan int, ok bool) {
	f := s.Frame(frameIndex)
	if f == nil {
		return 0, 0, false
	}
	if atRow <= 0 {
		rowSpan += atRow - 1
		atRow = 1
	}
	if rowSpan < 0 {
		rowSpan = 0
	}
	dataRow := atRow - 1
	f.DeleteRows(dataRow, rowSpan)
	b := s.bboxes[frameIndex]
	b.RowSpan -= rowSpan
	s.bboxes[frameIndex] = b
	return atRow, rowSpan, true
}

// DeleteCols removes colSpan columns at atCol.
func (s *Store) DeleteCols(frameIndex, atCol, colSpan int) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	f.DeleteCols(atCol, colSpan)
	b := s.bboxes[frameIndex]
	b.ColSpan -= colSpan
	s.bboxes[frameIndex] = b
	return true
}

// DuplicateRows inserts a copy of [atRow, atRow+rowSpan) immediately after.
func (s *Store) DuplicateRows(frameIndex, atRow, rowSpan int) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	f.DuplicateRows(atRow, rowSpan)
	b := s.bboxes[frameIndex]
	b.RowSpan += rowSpan
	s.bboxes[frameIndex] = b
	return true
}

// DuplicateCols duplicates colSpan columns at atCol.
func (s *Store) DuplicateCols(frameIndex, atCol, colSpan int, left bool) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	f.DuplicateCols(atCol, colSpan, left)
	b := s.bboxes[frameIndex]
	b.ColSpan += colSpan
	s.bboxes[frameIndex] = b
	return true
}

// Replacer is the tagged union of update() payload shapes.
type Replacer struct {
	Scalar        *frame.CellValue
	Header        *string    // single header rename
	HeaderList    []string   // per-column header rename
	Block         *frame.Frame
	SearchPattern *string
	MatchCase     bool
}

// Update applies a Replacer across a rectangular block, honoring the
// header/data distinction and per-cell autocast/rename rules.
func (s *Store) Update(frameIndex, col, row, colSpan, rowSpan int, r Replacer) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	switch {
	case r.Block != nil:
		return s.updateBlock(f, col, row, colSpan, rowSpan, r)
	default:
		return s.updateScalar(f, col, row, colSpan, rowSpan, r)
	}
}

func (s *Store) updateScalar(f *frame.Frame, col, row, colSpan, rowSpan int, r Replacer) bool {
	endCol := col + colSpan
	if colSpan < 0 {
		endCol = f.Width()
	}
	rowCount := f.Height()
	dataRow := row - 1
	start := dataRow
	if start < 0 {
		start = 0
	}
	stop := dataRow + rowSpan
	if stop > rowCount {
		stop = rowCount
	}

	anySucceeded := false
	for c := col; c < endCol && c < f.Width(); c++ {
		colObj := f.ColumnAt(c)
		ok := true

		if r.SearchPattern != nil {
			if dataRow >= 0 && dataRow < rowCount {
				ok = applySearchReplace(f, c, dataRow, *r.SearchPattern, valueOrEmpty(r.Scalar), r.MatchCase)
			}
		} else if row == 0 {
			// header row: rename handled below; no data write
		} else if dataRow < 0 {
			// header handled separately; nothing to do for negative data row
		} else if rowSpan < 0 {
			for rr := 0; rr < rowCount; rr++ {
				ok = f.Set(c, rr, valueForColumn(r.Scalar, colObj.Type)) && ok
			}
		} else if stop > start {
			for rr := start; rr < stop; rr++ {
				ok = f.Set(c, rr, valueForColumn(r.Scalar, colObj.Type)) && ok
			}
		}

		if row == 0 {
			ok = renameHeader(f, c, r.Scalar) && ok
		}

		anySucceeded = anySucceeded || ok
	}
	return anySucceeded
}

func valueOrEmpty(v *frame.CellValue) frame.CellValue {
	if v == nil {
		return frame.Utf8Value("")
	}
	return *v
}

func valueForColumn(v *frame.CellValue, dtype frame.DType) frame.CellValue {
	if v == nil {
		return frame.Null(dtype)
	}
	if v.Kind == frame.DTypeUtf8 && v.Str == "" && !v.IsNull {
		return frame.Null(dtype)
	}
	return *v
}

func renameHeader(f *frame.Frame, col int, v *frame.CellValue) bool {
	if v == nil || v.IsNull || (v.Kind == frame.DTypeUtf8 && v.Str == "") {
		current := f.ColumnAt(col)
		if current != nil && frame.IsAutoColumnName(current.Name) {
			return true
		}
		return f.RenameColumn(col, f.NextAutoColumnName())
	}
	return f.RenameColumn(col, v.String())
}

func applySearchReplace(f *frame.Frame, col, dataRow int, pattern string, replacement frame.CellValue, matchCase bool) bool {
	current, ok := f.Get(col, dataRow)
	if !ok || current.Kind != frame.DTypeUtf8 {
		return false
	}
	replaceStr := replacement.String()
	if current.Str == pattern && replaceStr == "" {
		return f.Set(col, dataRow, frame.Null(frame.DTypeUtf8))
	}
	var newStr string
	if matchCase {
		newStr = replaceAllLiteral(current.Str, pattern, replaceStr)
	} else {
		newStr = replaceAllCaseInsensitive(current.Str, pattern, replaceStr)
	}
	if newStr == "" {
		return f.Set(col, dataRow, frame.Null(frame.DTypeUtf8))
	}
	return f.Set(col, dataRow, frame.Utf8Value(newStr))
}

func replaceAllLiteral(s, pattern, replacement string) string {
	if pattern == "" {
		return s
	}
	return strings.ReplaceAll(s, pattern, replacement)
}

func replaceAllCaseInsensitive(s, pattern, replacement string) string {
	if pattern == "" {
		return s
	}
	lowerS := strings.ToLower(s)
	lowerP := strings.ToLower(pattern)
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(lowerS[i:], lowerP)
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

func (s *Store) updateBlock(f *frame.Frame, col, row, colSpan, rowSpan int, r Replacer) bool {
	endCol := col + colSpan
	if colSpan < 0 {
		endCol = f.Width()
	}
	rowCount := f.Height()
	if rowSpan < 0 {
		rowSpan = rowCount
	}
	dataRow := row - 1
	start := dataRow
	if start < 0 {
		start = 0
	}
	stop := dataRow + rowSpan
	if stop > rowCount {
		stop = rowCount
	}

	contentIdx := -1
	anySucceeded := false
	for c := col; c < endCol && c < f.Width(); c++ {
		contentIdx++
		ok := true
		if contentIdx < r.Block.Width() {
			src := r.Block.ColumnAt(contentIdx)
			for rr := start; rr < stop; rr++ {
				srcIdx := rr - start
				if srcIdx >= len(src.Values) {
					break
				}
				ok = f.Set(c, rr, src.Values[srcIdx]) && ok
			}
		}
		if len(r.HeaderList) > contentIdx {
			ok = renameHeader(f, c, strPtr(r.HeaderList[contentIdx])) && ok
		} else if r.Header != nil {
			ok = renameHeader(f, c, strPtr(*r.Header)) && ok
		}
		anySucceeded = anySucceeded || ok
	}
	return anySucceeded
}

func strPtr(s string) *frame.CellValue {
	v := frame.Utf8Value(s)
	return &v
}

// FilterMask computes a combined visibility mask for frameIndex by
// conjoining its existing filter expression with `col == value_at(col,
// row)`, and stores the new expression.
func (s *Store) FilterMask(frameIndex, col, row int) []bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return nil
	}
	mask, expr := f.FilterMask(s.filters[frameIndex], col, row)
	s.filters[frameIndex] = expr
	return mask
}

// Sort stably sorts frameIndex by col and returns the permutation applied.
func (s *Store) Sort(frameIndex, col int, descending bool) []int {
	f := s.Frame(frameIndex)
	if f == nil {
		return nil
	}
	return f.Sort(col, descending)
}

// CastColumns casts [atCol, atCol+colSpan) to dtype atomically.
func (s *Store) CastColumns(frameIndex, atCol, colSpan int, dtype frame.DType, precision, scale int32) bool {
	f := s.Frame(frameIndex)
	if f == nil {
		return false
	}
	return f.CastColumns(atCol, colSpan, dtype, precision, scale)
}
