// Package frame implements the Frame leaf component: an ordered sequence
// of equal-length, named, typed columns, with the mutation and query
// primitives the Table Store composes into the public command surface.
// Cell data lives as typed in-memory columns rather than a file-backed
// format, since the core must not depend on a file format.
package frame

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Column is one named, typed vector of cells. All columns in a Frame share
// the same length.
type Column struct {
	Name      string
	Type      DType
	Precision int32 // Decimal only
	Scale     int32 // Decimal only
	Values    []CellValue
}

func (c *Column) clone() *Column {
	cp := *c
	cp.Values = append([]CellValue(nil), c.Values...)
	return &cp
}

// Frame is a typed columnar table.
type Frame struct {
	columns []*Column
}

// New constructs a Frame from the given columns. All columns must already
// share the same length; callers that build frames programmatically
// should use NewBlank or NewFromColumns after validating lengths.
func New(columns []*Column) *Frame {
	return &Frame{columns: columns}
}

// NewFromColumns validates that every column has equal length before
// constructing the Frame, returning an error otherwise.
func NewFromColumns(columns []*Column) (*Frame, error) {
	for i := 1; i < len(columns); i++ {
		if len(columns[i].Values) != len(columns[0].Values) {
			return nil, fmt.Errorf("frame: column %q has length %d, want %d", columns[i].Name, len(columns[i].Values), len(columns[0].Values))
		}
	}
	return &Frame{columns: columns}, nil
}

// NewBlank builds a height-row Frame with the given (name, dtype) schema,
// every cell null.
func NewBlank(schema []ColumnSchema, height int) *Frame {
	cols := make([]*Column, len(schema))
	for i, s := range schema {
		vals := make([]CellValue, height)
		for r := range vals {
			vals[r] = Null(s.Type)
		}
		cols[i] = &Column{Name: s.Name, Type: s.Type, Precision: s.Precision, Scale: s.Scale, Values: vals}
	}
	return &Frame{columns: cols}
}

// ColumnSchema is a (name, dtype) schema entry.
type ColumnSchema struct {
	Name      string
	Type      DType
	Precision int32
	Scale     int32
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	if f == nil {
		return 0
	}
	return len(f.columns)
}

// Height returns the number of data rows (not counting the header).
func (f *Frame) Height() int {
	if f == nil || len(f.columns) == 0 {
		return 0
	}
	return len(f.columns[0].Values)
}

// Schema returns the (name, dtype) pairs in column order.
func (f *Frame) Schema() []ColumnSchema {
	out := make([]ColumnSchema, len(f.columns))
	for i, c := range f.columns {
		out[i] = ColumnSchema{Name: c.Name, Type: c.Type, Precision: c.Precision, Scale: c.Scale}
	}
	return out
}

// ColumnNames returns the ordered column names.
func (f *Frame) ColumnNames() []string {
	out := make([]string, len(f.columns))
	for i, c := range f.columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the index of the named column, or -1 if absent.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnAt returns the column at idx, or nil when out of range.
func (f *Frame) ColumnAt(idx int) *Column {
	if idx < 0 || idx >= len(f.columns) {
		return nil
	}
	return f.columns[idx]
}

var autoNamePattern = regexp.MustCompile(`^column_(\d+)$`)

// NextAutoColumnName returns the smallest `column_N` name not already used
// in the frame.
func (f *Frame) NextAutoColumnName() string {
	used := make(map[int]bool)
	for _, c := range f.columns {
		if m := autoNamePattern.FindStringSubmatch(c.Name); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				used[v] = true
			}
		}
	}
	n := 1
	for used[n] {
		n++
	}
	return fmt.Sprintf("column_%d", n)
}

// IsAutoColumnName reports whether name already matches `column_\d+`.
func IsAutoColumnName(name string) bool {
	return autoNamePattern.MatchString(name)
}

// Get reads a single cell; row is zero-based into the data (header is not
// row 0 here — callers resolve the header/data distinction at the Table
// Store layer). Returns the zero CellValue and false when out of range.
func (f *Frame) Get(col, row int) (CellValue, bool) {
	c := f.ColumnAt(col)
	if c == nil || row < 0 || row >= len(c.Values) {
		return CellValue{}, false
	}
	return c.Values[row], true
}

// Set writes a single cell, casting v to the column's dtype. Returns false
// (no mutation) if the cast fails, unless the column is Utf8, in which
// case the string fallback always succeeds.
func (f *Frame) Set(col, row int, v CellValue) bool {
	c := f.ColumnAt(col)
	if c == nil || row < 0 || row >= len(c.Values) {
		return false
	}
	cast, ok := v.Cast(c.Type)
	if !ok {
		if c.Type == DTypeUtf8 {
			cast = Utf8Value(v.String())
		} else {
			return false
		}
	}
	c.Values[row] = cast
	return true
}

// RenameColumn renames the column at idx.
func (f *Frame) RenameColumn(idx int, name string) bool {
	c := f.ColumnAt(idx)
	if c == nil {
		return false
	}
	c.Name = name
	return true
}

// Clone deep-copies the frame (used before spilling/capturing undo state).
func (f *Frame) Clone() *Frame {
	cols := make([]*Column, len(f.columns))
	for i, c := range f.columns {
		cols[i] = c.clone()
	}
	return &Frame{columns: cols}
}

// SliceRows returns a new Frame containing rows [start, start+span).
func (f *Frame) SliceRows(start, span int) *Frame {
	cols := make([]*Column, len(f.columns))
	for i, c := range f.columns {
		end := start + span
		if end > len(c.Values) {
			end = len(c.Values)
		}
		if start > end {
			start = end
		}
		vals := append([]CellValue(nil), c.Values[start:end]...)
		cols[i] = &Column{Name: c.Name, Type: c.Type, Precision: c.Precision, Scale: c.Scale, Values: vals}
	}
	return &Frame{columns: cols}
}

// SelectColumns returns a new Frame (a "block") with only the named
// columns, in the given order.
func (f *Frame) SelectColumns(names []string) *Frame {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		if idx := f.ColumnIndex(name); idx >= 0 {
			cols = append(cols, f.columns[idx].clone())
		}
	}
	return &Frame{columns: cols}
}

// InsertRowsBlank inserts span null rows at atRow, typed per column.
func (f *Frame) InsertRowsBlank(atRow, span int) {
	for _, c := range f.columns {
		if atRow > len(c.Values) {
			atRow = len(c.Values)
		}
		blank := make([]CellValue, span)
		for i := range blank {
			blank[i] = Null(c.Type)
		}
		c.Values = insertSlice(c.Values, atRow, blank)
	}
}

// InsertRowsFromBlock inserts block's rows at atRow, casting block columns
// (matched by position) to the frame's column dtypes where safe. Returns
// false if block's width does not match the frame's width.
func (f *Frame) InsertRowsFromBlock(block *Frame, atRow int) bool {
	if block.Width() != f.Width() {
		return false
	}
	for i, c := range f.columns {
		src := block.columns[i]
		vals := make([]CellValue, len(src.Values))
		for r, v := range src.Values {
			cast, ok := v.Cast(c.Type)
			if !ok {
				if c.Type == DTypeUtf8 {
					cast = Utf8Value(v.String())
				} else {
					cast = Null(c.Type)
				}
			}
			vals[r] = cast
		}
		at := atRow
		if at > len(c.Values) {
			at = len(c.Values)
		}
		c.Values = insertSlice(c.Values, at, vals)
	}
	return true
}

func insertSlice(dst []CellValue, at int, src []CellValue) []CellValue {
	out := make([]CellValue, 0, len(dst)+len(src))
	out = append(out, dst[:at]...)
	out = append(out, src...)
	out = append(out, dst[at:]...)
	return out
}

// InsertColsBlank inserts span null columns named `column_N` at atCol. When
// left is true, numbering descends so display order still reads
// left-to-right.
func (f *Frame) InsertColsBlank(atCol, span int, left bool) {
	height := f.Height()
	number := 1
	for _, c := range f.columns {
		if m := autoNamePattern.FindStringSubmatch(c.Name); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil && v >= number {
				number = v + 1
			}
		}
	}
	col := atCol
	if left {
		number += span - 1
	}
	for i := 0; i < span; i++ {
		vals := make([]CellValue, height)
		for r := range vals {
			vals[r] = Null(DTypeUtf8)
		}
		newCol := &Column{Name: fmt.Sprintf("column_%d", number), Type: DTypeUtf8, Values: vals}
		at := col
		if at > len(f.columns) {
			at = len(f.columns)
		}
		if at < 0 {
			at = 0
		}
		f.columns = insertColumn(f.columns, at, newCol)
		if !left {
			col++
			number++
		} else {
			number--
		}
	}
}

func insertColumn(dst []*Column, at int, c *Column) []*Column {
	out := make([]*Column, 0, len(dst)+1)
	out = append(out, dst[:at]...)
	out = append(out, c)
	out = append(out, dst[at:]...)
	return out
}

// InsertColsFromBlock inserts block's columns at atCol, preserving block
// order and dtypes.
func (f *Frame) InsertColsFromBlock(block *Frame, atCol int) {
	for i, c := range block.columns {
		at := atCol + i
		if at > len(f.columns) {
			at = len(f.columns)
		}
		f.columns = insertColumn(f.columns, at, c.clone())
	}
}

// DeleteRows removes span rows starting at atRow. Row 0 (header) is never
// deleted at the Frame level — atRow here is already intra-frame data row
// 0-based; the Table Store is responsible for translating visual row 0
// into "clip to data row 0, shrink span by one".
func (f *Frame) DeleteRows(atRow, span int) {
	for _, c := range f.columns {
		end := atRow + span
		if end > len(c.Values) {
			end = len(c.Values)
		}
		if atRow > end {
			atRow = end
		}
		c.Values = append(append([]CellValue(nil), c.Values[:atRow]...), c.Values[end:]...)
	}
}

// DeleteCols removes span columns starting at atCol.
func (f *Frame) DeleteCols(atCol, span int) {
	end := atCol + span
	if end > len(f.columns) {
		end = len(f.columns)
	}
	if atCol > end {
		atCol = end
	}
	f.columns = append(append([]*Column(nil), f.columns[:atCol]...), f.columns[end:]...)
}

// DuplicateRows inserts a copy of rows [atRow, atRow+span) immediately
// after that range.
func (f *Frame) DuplicateRows(atRow, span int) {
	for _, c := range f.columns {
		end := atRow + span
		if end > len(c.Values) {
			end = len(c.Values)
		}
		dup := append([]CellValue(nil), c.Values[atRow:end]...)
		c.Values = insertSlice(c.Values, end, dup)
	}
}

var trailingNumberSuffix = regexp.MustCompile(`_(\d+)$`)

// DuplicateCols duplicates span columns at atCol, deriving each duplicate's
// name by stripping a trailing `_N` suffix and appending the next free
// `_M`.
func (f *Frame) DuplicateCols(atCol, span int, left bool) {
	col := atCol
	if left {
		col += span - 1
	}
	for i := 0; i < span; i++ {
		src := f.columns[col]
		base := trailingNumberSuffix.ReplaceAllString(src.Name, "")
		number := 1
		pattern := regexp.MustCompile("^" + regexp.QuoteMeta(base) + `_(\d+)$`)
		for _, c := range f.columns {
			if m := pattern.FindStringSubmatch(c.Name); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil && v >= number {
					number = v + 1
				}
			}
		}
		dup := src.clone()
		dup.Name = fmt.Sprintf("%s_%d", base, number)

		var at int
		if !left {
			at = col + span
		} else {
			at = col - span + 1
		}
		if at > len(f.columns) {
			at = len(f.columns)
		}
		if at < 0 {
			at = 0
		}
		f.columns = insertColumn(f.columns, at, dup)

		if !left {
			col = at - span + 1
		} else {
			col = at + span - 1
		}
	}
}

// FilterConjunct is one `column == value` (null-equal) predicate term.
type FilterConjunct struct {
	ColumnIndex int
	Value       CellValue
}

// FilterExpr is a conjunction of FilterConjuncts.
type FilterExpr struct {
	Conjuncts []FilterConjunct
}

// And returns a new FilterExpr with conjunct appended.
func (fe *FilterExpr) And(conjunct FilterConjunct) *FilterExpr {
	out := &FilterExpr{Conjuncts: append([]FilterConjunct(nil), conjunct)}
	if fe != nil {
		out.Conjuncts = append(append([]FilterConjunct(nil), fe.Conjuncts...), conjunct)
	}
	return out
}

// Matches reports whether the data row (0-based) satisfies every conjunct.
func (f *Frame) matches(expr *FilterExpr, row int) bool {
	if expr == nil {
		return true
	}
	for _, cj := range expr.Conjuncts {
		c := f.ColumnAt(cj.ColumnIndex)
		if c == nil || row >= len(c.Values) {
			return false
		}
		if !c.Values[row].Equal(cj.Value) {
			return false
		}
	}
	return true
}

// FilterMask computes a per-row visibility mask (length Height()+1, header
// always true) by conjoining existing with `col == value_at(col,row)`
// (null-equal). Returns the new combined expression alongside the mask so
// the Table Store can keep it for later calls.
func (f *Frame) FilterMask(existing *FilterExpr, col, row int) ([]bool, *FilterExpr) {
	value, ok := f.Get(col, row)
	if !ok {
		mask := make([]bool, f.Height()+1)
		for i := range mask {
			mask[i] = true
		}
		return mask, existing
	}
	expr := existing.And(FilterConjunct{ColumnIndex: col, Value: value})
	mask := make([]bool, f.Height()+1)
	mask[0] = true
	for r := 0; r < f.Height(); r++ {
		mask[r+1] = f.matches(expr, r)
	}
	return mask, expr
}

// Sort performs a stable sort of data rows by column, nulls last
// regardless of direction, and returns the permutation applied (old row
// index for each new row index) so callers can permute a parallel
// visibility mask.
func (f *Frame) Sort(col int, descending bool) []int {
	h := f.Height()
	perm := make([]int, h)
	for i := range perm {
		perm[i] = i
	}
	target := f.ColumnAt(col)
	sort.SliceStable(perm, func(i, j int) bool {
		a, b := target.Values[perm[i]], target.Values[perm[j]]
		if a.IsNull != b.IsNull {
			return !a.IsNull // non-null before null, regardless of direction
		}
		if a.IsNull {
			return false
		}
		if descending {
			return b.Less(a)
		}
		return a.Less(b)
	})
	f.Permute(perm)
	return perm
}

// Permute reorders every column's data rows so that row newIdx holds the
// value previously at perm[newIdx]. Sort uses this to apply the sorted
// order; a History command can call it a second time with the inverse
// permutation to undo a sort without re-cloning the whole frame.
func (f *Frame) Permute(perm []int) {
	h := len(perm)
	for _, c := range f.columns {
		newVals := make([]CellValue, h)
		for newIdx, oldIdx := range perm {
			newVals[newIdx] = c.Values[oldIdx]
		}
		c.Values = newVals
	}
}

// CastColumns casts the contiguous range [atCol, atCol+span) to dtype,
// atomically: if any value in any of the columns cannot be represented,
// the whole group is left unchanged and false is returned.
func (f *Frame) CastColumns(atCol, span int, dtype DType, precision, scale int32) bool {
	end := atCol + span
	if end > len(f.columns) {
		return false
	}
	converted := make([][]CellValue, span)
	for i := 0; i < span; i++ {
		c := f.columns[atCol+i]
		vals := make([]CellValue, len(c.Values))
		for r, v := range c.Values {
			cast, ok := v.Cast(dtype)
			if !ok {
				return false
			}
			vals[r] = cast
		}
		converted[i] = vals
	}
	for i := 0; i < span; i++ {
		c := f.columns[atCol+i]
		c.Type = dtype
		c.Precision = precision
		c.Scale = scale
		c.Values = converted[i]
	}
	return true
}
