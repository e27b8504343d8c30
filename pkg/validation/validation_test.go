package validation

import (
	"testing"

	"github.com/eruostudio/sheetcore/pkg/pagination"
)

type pathReq struct {
	Path string `validate:"required,xlsxpath"`
}

type cellReq struct {
	Cell string `validate:"required,a1cell"`
}

type rangeReq struct {
	Range string `validate:"required,a1range"`
}

type cursorReq struct {
	Cursor string `validate:"omitempty,cursor"`
}

func TestValidator_XlsxPath(t *testing.T) {
	cases := []struct {
		name string
		path string
		ok   bool
	}{
		{"valid xlsx", "book.xlsx", true},
		{"valid xlsm uppercase extension-insensitive", "Book.XLSM", true},
		{"valid xltx", "template.xltx", true},
		{"wrong extension", "book.csv", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validator().Struct(pathReq{Path: tc.path})
			if (err == nil) != tc.ok {
				t.Errorf("Struct(%q) err = %v, want ok=%v", tc.path, err, tc.ok)
			}
		})
	}
}

func TestValidator_A1Cell(t *testing.T) {
	cases := []struct {
		name string
		cell string
		ok   bool
	}{
		{"simple cell", "B12", true},
		{"lowercase cell", "aa1", true},
		{"column-only token is accepted", "B", true},
		{"row-only token is accepted", "12", true},
		{"digit before letters is invalid", "1A2", false},
		{"trailing junk after the row digits", "B1!", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validator().Struct(cellReq{Cell: tc.cell})
			if (err == nil) != tc.ok {
				t.Errorf("Struct(%q) err = %v, want ok=%v", tc.cell, err, tc.ok)
			}
		})
	}
}

func TestValidator_A1Range(t *testing.T) {
	cases := []struct {
		name  string
		rng   string
		ok    bool
	}{
		{"valid range", "A1:D50", true},
		{"a bare cell parses as a single-cell range", "A1", true},
		{"reversed endpoints still parse", "D50:A1", true},
		{"trailing colon with no second endpoint", "A1:", false},
		{"garbage", "not-a-range", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validator().Struct(rangeReq{Range: tc.rng})
			if (err == nil) != tc.ok {
				t.Errorf("Struct(%q) err = %v, want ok=%v", tc.rng, err, tc.ok)
			}
		})
	}
}

func TestValidator_Cursor(t *testing.T) {
	good, err := pagination.EncodeCursor(pagination.Cursor{Fi: 0, C: 1, R: 1, Ps: 20, Qh: "abc"})
	if err != nil {
		t.Fatalf("EncodeCursor setup failed: %v", err)
	}

	cases := []struct {
		name   string
		cursor string
		ok     bool
	}{
		{"empty is allowed (omitempty)", "", true},
		{"well-formed cursor", good, true},
		{"not base64", "not base64!!", false},
		{"base64 but not a cursor payload", "bm90LWpzb24", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validator().Struct(cursorReq{Cursor: tc.cursor})
			if (err == nil) != tc.ok {
				t.Errorf("Struct(%q) err = %v, want ok=%v", tc.cursor, err, tc.ok)
			}
		})
	}
}

func TestValidateStruct_ReturnsEmptyStringWhenValid(t *testing.T) {
	if msg := ValidateStruct(cellReq{Cell: "A1"}); msg != "" {
		t.Errorf("ValidateStruct(valid) = %q, want empty", msg)
	}
}

func TestValidateStruct_MapsEachCustomTagToItsOwnMessage(t *testing.T) {
	cases := []struct {
		name string
		req  any
		want string
	}{
		{"required", pathReq{Path: ""}, "VALIDATION: path is required"},
		{"xlsxpath", pathReq{Path: "book.csv"}, "VALIDATION: path must be an Excel file (.xlsx, .xlsm, .xltx, .xltm)"},
		{"a1cell", cellReq{Cell: "1A2"}, "VALIDATION: invalid cell reference; use a token like B12"},
		{"a1range", rangeReq{Range: "A1:"}, "VALIDATION: invalid range; use a token like A1:D50"},
		{"cursor", cursorReq{Cursor: "not base64!!"}, "CURSOR_INVALID: failed to decode cursor; restart pagination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateStruct(tc.req)
			if got != tc.want {
				t.Errorf("ValidateStruct(%+v) = %q, want %q", tc.req, got, tc.want)
			}
		})
	}
}
