package sheets

import (
	"fmt"
	"strings"
)

// ColumnLetter converts a 1-based column index to its A1-notation letters
// (1 -> "A", 26 -> "Z", 27 -> "AA").
func ColumnLetter(col int) string {
	if col < 1 {
		return ""
	}
	var b strings.Builder
	for col > 0 {
		col--
		b.WriteByte(byte('A' + col%26))
		col /= 26
	}
	// Digits were produced least significant first.
	s := []byte(b.String())
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return string(s)
}

// CellRef builds an A1 cell reference from 1-based column and row indexes.
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(col), row)
}
