package xlsx

import "fmt"

// ColumnName converts a 1-based column index to its letter name using
// bijective base 26: 1 is "A", 26 is "Z", 27 is "AA".
func ColumnName(index int) string {
	if index < 1 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for index > 0 {
		index--
		i--
		buf[i] = byte('A' + index%26)
		index /= 26
	}
	return string(buf[i:])
}

// ColumnIndex is the inverse of ColumnName.
func ColumnIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("bad column name %q", name)
		}
		n = n*26 + int(c-'A') + 1
		if n > maxColumns {
			return 0, fmt.Errorf("column %q out of range", name)
		}
	}
	return n, nil
}

// CellRef is the A1-style reference of a 1-based (column, row) pair.
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row)
}
