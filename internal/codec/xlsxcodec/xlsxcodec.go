// Package xlsxcodec is the concrete TableCodec adapter that reads and
// writes .xlsx workbooks into and out of frame.Frame values using
// excelize. It lives outside internal/document deliberately: the core
// engine has no file-format or codec knowledge, and
// this package is the one place that bridges a worksheet to a Frame.
package xlsxcodec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eruostudio/sheetcore/internal/frame"
)

// ReadSheet loads sheetName from f into a Frame, treating row 1 as the
// header. Each column's dtype is sniffed from its cell text over every
// data row (strconv and time.Parse): bool, then integer, then float,
// then date (YYYY-MM-DD) when all non-empty cells parse as that type,
// falling back to Utf8.
func ReadSheet(f *excelize.File, sheetName string) (*frame.Frame, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsxcodec: read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return frame.NewBlank(nil, 0), nil
	}

	header := rows[0]
	width := len(header)
	height := len(rows) - 1

	schema := make([]frame.ColumnSchema, width)
	raw := make([][]string, width)
	for c := 0; c < width; c++ {
		name := ""
		if c < len(header) {
			name = header[c]
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", c+1)
		}
		schema[c] = frame.ColumnSchema{Name: name, Type: frame.DTypeUtf8}
		raw[c] = make([]string, height)
	}
	for r := 1; r <= height; r++ {
		row := rows[r]
		for c := 0; c < width; c++ {
			if c < len(row) {
				raw[c][r-1] = row[c]
			}
		}
	}
	for c := 0; c < width; c++ {
		schema[c].Type = sniffColumn(raw[c])
	}

	fr := frame.NewBlank(schema, height)
	for c := 0; c < width; c++ {
		for r := 0; r < height; r++ {
			s := raw[c][r]
			if s == "" {
				continue
			}
			fr.Set(c, r, frame.Utf8Value(s))
		}
	}
	return fr, nil
}

func sniffColumn(values []string) frame.DType {
	sawAny := false
	allInt, allFloat, allBool, allDate := true, true, true, true
	for _, s := range values {
		if s == "" {
			continue
		}
		sawAny = true
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allFloat = false
		}
		if _, err := strconv.ParseBool(s); err != nil {
			allBool = false
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			allDate = false
		}
	}
	switch {
	case !sawAny:
		return frame.DTypeUtf8
	case allBool:
		return frame.DTypeBool
	case allInt:
		return frame.DTypeI64
	case allFloat:
		return frame.DTypeF64
	case allDate:
		return frame.DTypeDate
	default:
		return frame.DTypeUtf8
	}
}

// WriteSheet streams fr into sheetName of f, creating the sheet if
// absent, using excelize's StreamWriter for large frames.
func WriteSheet(f *excelize.File, sheetName string, fr *frame.Frame) error {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return fmt.Errorf("xlsxcodec: lookup sheet %q: %w", sheetName, err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return fmt.Errorf("xlsxcodec: create sheet %q: %w", sheetName, err)
		}
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("xlsxcodec: new stream writer: %w", err)
	}

	names := fr.ColumnNames()
	headerRow := make([]interface{}, len(names))
	for i, n := range names {
		headerRow[i] = n
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("xlsxcodec: write header: %w", err)
	}

	width := fr.Width()
	height := fr.Height()
	for r := 0; r < height; r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, width)
		for c := 0; c < width; c++ {
			v, _ := fr.Get(c, r)
			row[c] = cellToExcel(v)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("xlsxcodec: write row %d: %w", r, err)
		}
	}
	return sw.Flush()
}

func cellToExcel(v frame.CellValue) interface{} {
	if v.IsNull {
		return nil
	}
	switch v.Kind {
	case frame.DTypeBool:
		return v.Bool
	case frame.DTypeF32, frame.DTypeF64:
		return v.Float
	case frame.DTypeDate, frame.DTypeTime, frame.DTypeDatetime:
		return v.T
	case frame.DTypeUtf8, frame.DTypeCategorical:
		return v.Str
	default:
		return v.String()
	}
}
