package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xuri/excelize/v2"

	"github.com/eruostudio/sheetcore/internal/codec/xlsxcodec"
	"github.com/eruostudio/sheetcore/internal/docmanager"
	"github.com/eruostudio/sheetcore/internal/document"
	"github.com/eruostudio/sheetcore/internal/frame"
	"github.com/eruostudio/sheetcore/internal/guard"
	"github.com/eruostudio/sheetcore/internal/spill"
	"github.com/eruostudio/sheetcore/internal/spillpath"
	"github.com/eruostudio/sheetcore/internal/tablestore"
	"github.com/eruostudio/sheetcore/pkg/a1"
	"github.com/eruostudio/sheetcore/pkg/coreerr"
	"github.com/eruostudio/sheetcore/pkg/pagination"
	"github.com/eruostudio/sheetcore/pkg/validation"
)

type openDocumentInput struct {
	Path  string `json:"path" validate:"required,xlsxpath" jsonschema_description:"Path to an xlsx workbook"`
	Sheet string `json:"sheet" jsonschema_description:"Sheet name; defaults to the first sheet"`
}

type openDocumentOutput struct {
	DocumentID string `json:"document_id"`
	FrameIndex int    `json:"frame_index"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type readRangeInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
	Range      string `json:"range" validate:"required,a1range" jsonschema_description:"A1 range, e.g. A1:D50"`
}

type readRangeOutput struct {
	Range   string     `json:"range"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type updateCellInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
	Cell       string `json:"cell" validate:"required,a1cell" jsonschema_description:"A1 cell, e.g. B12"`
	Value      string `json:"value" jsonschema_description:"New cell value; empty string clears the cell"`
}

type insertBlankRowsInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
	AtRow      int    `json:"at_row" validate:"required,min=1"`
	Span       int    `json:"span" validate:"required,min=1"`
}

type selectRangeInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	Name       string `json:"name" validate:"required,a1range" jsonschema_description:"A1 token: A1, A1:B2, column-only H, row-only 5"`
}

type deleteRowsInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
}

type deleteColsInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
}

type duplicateRowsInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
}

type filterRowsInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
	ViewIndex  int    `json:"view_index"`
	Col        int    `json:"col" validate:"min=0"`
	Row        int    `json:"row" validate:"min=1"`
}

type sortRowsInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FrameIndex int    `json:"frame_index"`
	ViewIndex  int    `json:"view_index"`
	Col        int    `json:"col" validate:"min=0"`
	Descending bool   `json:"descending"`
}

type undoRedoInput struct {
	DocumentID string `json:"document_id" validate:"required"`
}

type undoRedoOutput struct {
	Applied bool `json:"applied"`
}

type findInCurrentTableInput struct {
	DocumentID      string `json:"document_id" validate:"required"`
	FrameIndex      int    `json:"frame_index"`
	ViewIndex       int    `json:"view_index"`
	Query           string `json:"query" validate:"required"`
	MatchCase       bool   `json:"match_case"`
	MatchCell       bool   `json:"match_cell" jsonschema_description:"Require exact cell equality instead of substring"`
	UseRegexp       bool   `json:"use_regexp" jsonschema_description:"Treat query as a (?i)?pattern regular expression"`
	WithinSelection bool   `json:"within_selection" jsonschema_description:"Restrict the search to the active range"`
	Cursor          string `json:"cursor,omitempty" validate:"omitempty,cursor"`
	Limit           int    `json:"limit,omitempty"`
}

type findMatchOutput struct {
	Cell  string `json:"cell"`
	Value string `json:"value"`
}

type findInCurrentTableOutput struct {
	Matches    []findMatchOutput `json:"matches"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

type replaceAllInput struct {
	DocumentID      string `json:"document_id" validate:"required"`
	FrameIndex      int    `json:"frame_index"`
	Query           string `json:"query" validate:"required"`
	Replacement     string `json:"replacement"`
	MatchCase       bool   `json:"match_case"`
	MatchCell       bool   `json:"match_cell" jsonschema_description:"Require exact cell equality instead of substring"`
	UseRegexp       bool   `json:"use_regexp" jsonschema_description:"Treat query as a (?i)?pattern regular expression"`
	WithinSelection bool   `json:"within_selection" jsonschema_description:"Restrict the replace to the active range"`
}

type replaceAllOutput struct {
	Changed int `json:"changed"`
}

type selectEntireSheetInput struct {
	DocumentID string `json:"document_id" validate:"required"`
}

func registerTools(s *server.MCPServer, docs *docmanager.Manager, scratch *spillpath.Resolver, controller *guard.Controller) {
	spillStore := spill.New(scratch)

	openTool := mcp.NewTool(
		"open_document",
		mcp.WithDescription("Open an xlsx workbook sheet as a new Document"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to an xlsx workbook")),
		mcp.WithString("sheet", mcp.Description("Sheet name; defaults to the first sheet")),
		mcp.WithOutputSchema[openDocumentOutput](),
	)
	s.AddTool(openTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in openDocumentInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		if err := controller.AcquireDocument(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("BUSY: %v", err)), nil
		}
		defer controller.ReleaseDocument()

		f, err := excelize.OpenFile(in.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("OPEN_FAILED: %v", err)), nil
		}
		defer f.Close()

		sheet := in.Sheet
		if sheet == "" {
			sheets := f.GetSheetList()
			if len(sheets) == 0 {
				return mcp.NewToolResultError("OPEN_FAILED: workbook has no sheets"), nil
			}
			sheet = sheets[0]
		}

		fr, err := xlsxcodec.ReadSheet(f, sheet)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("OPEN_FAILED: %v", err)), nil
		}

		doc := document.New(spillStore, 500*time.Millisecond, nil)
		idx := doc.AddFrame(fr, 1, 1)

		id, err := docs.Adopt(ctx, doc)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("BUSY: %v", err)), nil
		}

		out := openDocumentOutput{DocumentID: id, FrameIndex: idx, Width: fr.Width(), Height: fr.Height()}
		return mcp.NewToolResultStructured(out, fmt.Sprintf("opened %s (%dx%d)", sheet, fr.Width(), fr.Height())), nil
	}))

	readTool := mcp.NewTool(
		"read_range",
		mcp.WithDescription("Read a cell range from an open Document"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 range, e.g. A1:D50")),
		mcp.WithOutputSchema[readRangeOutput](),
	)
	s.AddTool(readTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in readRangeInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		parsed, ok := a1.ParseRange(in.Range)
		if !ok {
			return mcp.NewToolResultError("VALIDATION: invalid range"), nil
		}

		var out readRangeOutput
		err := docs.WithRead(in.DocumentID, func(doc *document.Document) error {
			block := doc.ReadBlock(in.FrameIndex, parsed.Col1, parsed.Row1, parsed.Col2-parsed.Col1+1, parsed.Row2-parsed.Row1+1)
			if block == nil {
				return fmt.Errorf("frame %d not found", in.FrameIndex)
			}
			out.Range = in.Range
			out.Columns = block.ColumnNames()
			out.Rows = make([][]string, block.Height())
			for r := 0; r < block.Height(); r++ {
				row := make([]string, block.Width())
				for c := 0; c < block.Width(); c++ {
					v, _ := block.Get(c, r)
					row[c] = v.String()
				}
				out.Rows[r] = row
			}
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("READ_FAILED: %v", err)), nil
		}
		return mcp.NewToolResultStructured(out, fmt.Sprintf("read %d rows", len(out.Rows))), nil
	}))

	updateTool := mcp.NewTool(
		"update_cell",
		mcp.WithDescription("Write a single cell value in an open Document"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithString("cell", mcp.Required()),
		mcp.WithString("value"),
	)
	s.AddTool(updateTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in updateCellInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		cell, ok := a1.ParseCell(in.Cell)
		if !ok {
			return mcp.NewToolResultError("VALIDATION: invalid cell"), nil
		}
		scalar := frame.Utf8Value(in.Value)
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.Update(in.FrameIndex, cell.Col, cell.Row, 1, 1, tablestore.Replacer{Scalar: &scalar})
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("UPDATE_FAILED: cell could not be written"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	insertTool := mcp.NewTool(
		"insert_blank_rows",
		mcp.WithDescription("Insert blank rows into an open Document"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithNumber("at_row", mcp.Required()),
		mcp.WithNumber("span", mcp.Required()),
	)
	s.AddTool(insertTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in insertBlankRowsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.InsertBlankRows(in.FrameIndex, in.AtRow-1, in.Span)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("INSERT_FAILED: rows could not be inserted"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	selectTool := mcp.NewTool(
		"select_range",
		mcp.WithDescription("Move the active selection to an A1 token (A1, A1:B2, column-only, row-only)"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithString("name", mcp.Required()),
	)
	s.AddTool(selectTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in selectRangeInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.UpdateSelectionFromA1Name(in.Name)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("VALIDATION: invalid range"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	deleteRowsTool := mcp.NewTool(
		"delete_current_rows",
		mcp.WithDescription("Delete the rows spanned by the active selection"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
	)
	s.AddTool(deleteRowsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in deleteRowsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.DeleteCurrentRows(in.FrameIndex)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("DELETE_FAILED: rows could not be deleted"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	deleteColsTool := mcp.NewTool(
		"delete_current_cols",
		mcp.WithDescription("Delete the columns spanned by the active selection"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
	)
	s.AddTool(deleteColsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in deleteColsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.DeleteCurrentCols(in.FrameIndex)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("DELETE_FAILED: columns could not be deleted"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	duplicateRowsTool := mcp.NewTool(
		"duplicate_current_rows",
		mcp.WithDescription("Duplicate the rows spanned by the active selection, inserting the copy below"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
	)
	s.AddTool(duplicateRowsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in duplicateRowsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.DuplicateCurrentRows(in.FrameIndex)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("DUPLICATE_FAILED: rows could not be duplicated"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	filterRowsTool := mcp.NewTool(
		"filter_current_rows",
		mcp.WithDescription("Filter rows by the value at (col,row), conjoined with any existing filter"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithNumber("view_index"),
		mcp.WithNumber("col", mcp.Required()),
		mcp.WithNumber("row", mcp.Required()),
	)
	s.AddTool(filterRowsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in filterRowsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.FilterCurrentRows(in.FrameIndex, in.ViewIndex, in.Col, in.Row-1)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("FILTER_FAILED: could not apply filter"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	sortRowsTool := mcp.NewTool(
		"sort_current_rows",
		mcp.WithDescription("Stably sort the frame by column, permuting the view's row visibility along with it"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithNumber("view_index"),
		mcp.WithNumber("col", mcp.Required()),
		mcp.WithBoolean("descending", mcp.DefaultBool(false)),
	)
	s.AddTool(sortRowsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in sortRowsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			applied = doc.SortCurrentRows(in.FrameIndex, in.ViewIndex, in.Col, in.Descending)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if !applied {
			return mcp.NewToolResultError("SORT_FAILED: could not sort"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))

	undoTool := mcp.NewTool("undo", mcp.WithDescription("Undo the last command on a Document"), mcp.WithString("document_id", mcp.Required()), mcp.WithOutputSchema[undoRedoOutput]())
	s.AddTool(undoTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in undoRedoInput) (*mcp.CallToolResult, error) {
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			ok, err := doc.Undo()
			applied = ok
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("UNDO_FAILED: %v", err)), nil
		}
		return mcp.NewToolResultStructured(undoRedoOutput{Applied: applied}, "undo"), nil
	}))

	redoTool := mcp.NewTool("redo", mcp.WithDescription("Redo the last undone command on a Document"), mcp.WithString("document_id", mcp.Required()), mcp.WithOutputSchema[undoRedoOutput]())
	s.AddTool(redoTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in undoRedoInput) (*mcp.CallToolResult, error) {
		var applied bool
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			ok, err := doc.Redo()
			applied = ok
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("REDO_FAILED: %v", err)), nil
		}
		return mcp.NewToolResultStructured(undoRedoOutput{Applied: applied}, "redo"), nil
	}))

	findTool := mcp.NewTool(
		"find_in_current_table",
		mcp.WithDescription("Search a Document's frame for a pattern, paginated via cursor"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithNumber("view_index", mcp.Description("View index whose hidden rows/columns are excluded from the search")),
		mcp.WithString("query", mcp.Required()),
		mcp.WithBoolean("match_case", mcp.DefaultBool(false)),
		mcp.WithBoolean("match_cell", mcp.DefaultBool(false), mcp.Description("Require exact cell equality instead of substring")),
		mcp.WithBoolean("use_regexp", mcp.DefaultBool(false), mcp.Description("Treat query as a regular expression")),
		mcp.WithBoolean("within_selection", mcp.DefaultBool(false), mcp.Description("Restrict the search to the active range")),
		mcp.WithString("cursor"),
		mcp.WithNumber("limit"),
		mcp.WithOutputSchema[findInCurrentTableOutput](),
	)
	s.AddTool(findTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in findInCurrentTableInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		limit := in.Limit
		if limit <= 0 {
			limit = 100
		}
		afterCol, afterRow := -1, 0
		if in.Cursor != "" {
			// cursor validated to decode cleanly by the `cursor` tag above.
			cur, _ := decodeFindCursor(in.Cursor)
			if cur.Fi != in.FrameIndex || cur.Qh != pagination.QueryHash(in.Query, in.MatchCase, in.MatchCell, in.UseRegexp, in.WithinSelection) {
				return mcp.NewToolResultError("CURSOR_INVALID: cursor was issued for a different search; restart without a cursor"), nil
			}
			afterCol, afterRow = cur.C, cur.R
		}

		var out findInCurrentTableOutput
		var cerr *coreerr.Error
		err := docs.WithRead(in.DocumentID, func(doc *document.Document) error {
			var matches []document.Match
			var nextCol, nextRow int
			var hasMore bool
			matches, nextCol, nextRow, hasMore, cerr = doc.FindInCurrentTable(
				in.FrameIndex, in.ViewIndex, in.Query, in.MatchCase, in.MatchCell, in.UseRegexp, in.WithinSelection,
				afterCol, afterRow, limit,
			)
			if cerr != nil {
				return nil
			}
			for _, m := range matches {
				out.Matches = append(out.Matches, findMatchOutput{Cell: a1.CellName(m.Col, m.Row+1), Value: m.Value})
			}
			if hasMore {
				token, err := encodeFindCursor(in.FrameIndex, nextCol, nextRow, limit, in.Query, in.MatchCase, in.MatchCell, in.UseRegexp, in.WithinSelection)
				if err == nil {
					out.NextCursor = token
				}
			}
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if cerr != nil {
			return mcp.NewToolResultError(cerr.Error()), nil
		}
		return mcp.NewToolResultStructured(out, fmt.Sprintf("%d matches", len(out.Matches))), nil
	}))

	replaceTool := mcp.NewTool(
		"replace_all_in_current_table",
		mcp.WithDescription("Replace every matching cell in a Document's frame, returning the count changed"),
		mcp.WithString("document_id", mcp.Required()),
		mcp.WithNumber("frame_index"),
		mcp.WithString("query", mcp.Required()),
		mcp.WithString("replacement"),
		mcp.WithBoolean("match_case", mcp.DefaultBool(false)),
		mcp.WithBoolean("match_cell", mcp.DefaultBool(false), mcp.Description("Require exact cell equality instead of substring")),
		mcp.WithBoolean("use_regexp", mcp.DefaultBool(false), mcp.Description("Treat query as a regular expression")),
		mcp.WithBoolean("within_selection", mcp.DefaultBool(false), mcp.Description("Restrict the replace to the active range")),
		mcp.WithOutputSchema[replaceAllOutput](),
	)
	s.AddTool(replaceTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in replaceAllInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		var changed int
		var cerr *coreerr.Error
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			changed, cerr = doc.ReplaceAllInCurrentTable(
				in.FrameIndex, in.Query, in.Replacement, in.MatchCase, in.MatchCell, in.UseRegexp, in.WithinSelection,
			)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		if cerr != nil {
			return mcp.NewToolResultError(cerr.Error()), nil
		}
		return mcp.NewToolResultStructured(replaceAllOutput{Changed: changed}, fmt.Sprintf("%d replaced", changed)), nil
	}))

	selectAllTool := mcp.NewTool(
		"select_entire_sheet",
		mcp.WithDescription("Select every addressable cell of the current sheet"),
		mcp.WithString("document_id", mcp.Required()),
	)
	s.AddTool(selectAllTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in selectEntireSheetInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		err := docs.WithWrite(in.DocumentID, func(doc *document.Document) error {
			doc.SelectEntireSheet()
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("INVALID_HANDLE: %v", err)), nil
		}
		return mcp.NewToolResultText("ok"), nil
	}))
}

func decodeFindCursor(token string) (pagination.Cursor, error) {
	c, err := pagination.DecodeCursor(token)
	if err != nil {
		return pagination.Cursor{}, err
	}
	return *c, nil
}

func encodeFindCursor(frameIndex, col, row, limit int, query string, matchCase, matchCell, useRegexp, withinSelection bool) (string, error) {
	return pagination.EncodeCursor(pagination.Cursor{
		V:  1,
		Fi: frameIndex,
		C:  col,
		R:  row,
		Ps: limit,
		Qh: pagination.QueryHash(query, matchCase, matchCell, useRegexp, withinSelection),
	})
}
