// Package template turns the raw spreadsheet range submitted by the
// print client (A12:H26, 15 rows by 8 columns of cell values) into the
// order payload stored locally and mirrored to the ledger. Both
// transforms are pure: same grid in, same payload out.
package template

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Grid is the decoded "data" array of a submission: rows of cells, each
// cell a string, a number or null depending on what the client read out
// of the sheet.
type Grid [][]any

// Payload is the validated order content ready for the store.
type Payload struct {
	Printer string
	Address string
	Content string
}

const (
	addressRow = 0
	printerRow = 14
)

// cell returns the trimmed string form of one cell. Missing cells and
// nulls are blank; numbers without a fractional part render as integers
// so a length of 10.0 becomes "10" in the content line.
func cell(g Grid, row, col int) string {
	if row >= len(g) || col >= len(g[row]) {
		return ""
	}
	switch v := g[row][col].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// normalizeAddress trims the address and strips every internal
// whitespace run, so "杭州 大厦 " and "杭州大厦" are the same place.
func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), "")
}
