// Package pagination implements the opaque cursor token used to resume a
// find_in_current_table search across calls, adapted from the
// teacher's workbook-range cursor to address a frame position instead of
// an A1 range: frame index + (col, row) + a hash of the search query and
// its mode flags, so a cursor resumed against a different search can be
// detected rather than silently mis-paging. Changes to the frame's
// contents are not covered.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Cursor is the canonical, opaque pagination token (pre-encoding), with
// short field names to minimize payload size. It is serialized to
// minified JSON and encoded with URL-safe base64.
//
// Fields:
//   - v:  version of the cursor schema
//   - fi: frame index the search is scoped to
//   - c:  last-returned column (resume strictly after this cell)
//   - r:  last-returned row
//   - ps: page size in matches
//   - qh: QueryHash of the query and its match-case, match-cell, regexp
//     and within-selection flags, to detect a stale cursor
//     issued against a different search
type Cursor struct {
	V  int    `json:"v"`
	Fi int    `json:"fi"`
	C  int    `json:"c"`
	R  int    `json:"r"`
	Ps int    `json:"ps"`
	Qh string `json:"qh"`
}

// EncodeCursor serializes and encodes the cursor as URL-safe base64
// (without padding).
func EncodeCursor(c Cursor) (string, error) {
	if err := validate(&c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a URL-safe base64 token and parses the JSON
// cursor.
func DecodeCursor(token string) (*Cursor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, errors.New("cursor: empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("cursor: invalid base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cursor: invalid json: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validate(c *Cursor) error {
	if c.V <= 0 {
		c.V = 1
	}
	if c.Fi < 0 {
		return errors.New("cursor: fi (frame index) must be >= 0")
	}
	if c.Ps <= 0 {
		return errors.New("cursor: ps must be > 0")
	}
	if strings.TrimSpace(c.Qh) == "" {
		return errors.New("cursor: qh (query hash) required")
	}
	return nil
}

// QueryHash derives the stale-cursor check value for a search query,
// folding in every flag that changes which cells match so a cursor
// resumed with a different mode is detected rather than silently
// mis-paging.
func QueryHash(pattern string, matchCase, matchCell, useRegexp, withinSelection bool) string {
	flags := "i"
	if matchCase {
		flags = "c"
	}
	if matchCell {
		flags += "e"
	}
	if useRegexp {
		flags += "r"
	}
	if withinSelection {
		flags += "s"
	}
	return fmt.Sprintf("%x:%s", len(pattern), flags) + ":" + pattern[:minInt(len(pattern), 16)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
