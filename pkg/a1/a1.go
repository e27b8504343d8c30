// Package a1 implements the bijective base-26 column naming scheme used by
// the A1 grid addressing convention (A, B, ... Z, AA, AB, ... ZZ, AAA, ...)
// and the cell/range name parsing built on top of it.
package a1

import (
	"strconv"
	"strings"
)

// EncodeColumn converts a zero-based column index to its uppercase A1
// column name. There is no zero digit in this scheme: after Z comes AA,
// after AZ comes BA, after ZZ comes AAA.
func EncodeColumn(col int) string {
	if col < 0 {
		return ""
	}
	var b []byte
	for col >= 0 {
		b = append([]byte{byte('A' + col%26)}, b...)
		col = col/26 - 1
	}
	return string(b)
}

// DecodeColumn converts an uppercase (or mixed-case) A1 column name back to
// its zero-based column index. Returns -1 when name is empty or contains a
// non-letter character.
func DecodeColumn(name string) int {
	if name == "" {
		return -1
	}
	col := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			col = col*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			col = col*26 + int(c-'a'+1)
		default:
			return -1
		}
	}
	return col - 1
}

// NextColumnName returns the A1 column name that immediately follows name,
// i.e. EncodeColumn(DecodeColumn(name)+1), computed directly on the string:
// find the rightmost non-Z character, increment it, and replace every
// character to its right with A; if the string is all Z, prepend an extra A.
func NextColumnName(name string) string {
	b := []byte(strings.ToUpper(name))
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 'Z' {
			b[i]++
			for j := i + 1; j < len(b); j++ {
				b[j] = 'A'
			}
			return string(b)
		}
	}
	out := make([]byte, len(b)+1)
	for i := range out {
		out[i] = 'A'
	}
	return string(out)
}

// CellName renders a zero-based (col, row) pair as an A1 cell address, e.g.
// (0,0) -> "A1", (1,0) -> "B1", (0,1) -> "A2".
func CellName(col, row int) string {
	return EncodeColumn(col) + strconv.Itoa(row+1)
}

// ParsedCell is the result of parsing a locator token: a bare cell (A1), a
// column-only token (H, meaning row=0 "select whole column"), or a row-only
// token (5, meaning col=0 "select whole row").
type ParsedCell struct {
	Col, Row int
}

// ParseCell parses a token of the form "A10", "AA5", "ABC123" (column and
// row, both zero-based in the returned struct), "5" (row-only, col=0), or
// "H" (column-only, row=0). Returns ok=false when the token cannot be
// parsed into one of these shapes.
func ParseCell(token string) (ParsedCell, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ParsedCell{}, false
	}
	i := 0
	for i < len(token) && isAlpha(token[i]) {
		i++
	}
	letters := token[:i]
	digits := token[i:]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return ParsedCell{}, false
		}
	}
	switch {
	case letters != "" && digits != "":
		col := DecodeColumn(letters)
		row, err := strconv.Atoi(digits)
		if err != nil || col < 0 {
			return ParsedCell{}, false
		}
		return ParsedCell{Col: col, Row: row - 1}, true
	case digits != "":
		row, err := strconv.Atoi(digits)
		if err != nil {
			return ParsedCell{}, false
		}
		return ParsedCell{Col: 0, Row: row - 1}, true
	case letters != "":
		col := DecodeColumn(letters)
		if col < 0 {
			return ParsedCell{}, false
		}
		return ParsedCell{Col: col, Row: 0}, true
	default:
		return ParsedCell{}, false
	}
}

// ParsedRange is the zero-based, inclusive result of parsing an A1 range.
type ParsedRange struct {
	Col1, Row1, Col2, Row2 int
}

// ParseRange parses "A1", "A1:B2", "H" (column-only), "5" (row-only), or
// "H:J" / "5:10" range forms. Returns ok=false when the token cannot be
// parsed.
func ParseRange(token string) (ParsedRange, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ParsedRange{}, false
	}
	parts := strings.SplitN(token, ":", 2)
	first, ok := ParseCell(parts[0])
	if !ok {
		return ParsedRange{}, false
	}
	if len(parts) == 1 {
		return ParsedRange{Col1: first.Col, Row1: first.Row, Col2: first.Col, Row2: first.Row}, true
	}
	second, ok := ParseCell(parts[1])
	if !ok {
		return ParsedRange{}, false
	}
	return ParsedRange{Col1: first.Col, Row1: first.Row, Col2: second.Col, Row2: second.Row}, true
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
