// Package xlsx writes minimal SpreadsheetML workbooks: a zip package of
// cross-referenced XML parts that spreadsheet applications can open.
package xlsx

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	maxColumns      = 16384
	maxRows         = 1048576
	maxSheetNameLen = 31
)

var (
	ErrNoSheets       = errors.New("xlsx: workbook has no sheets")
	ErrSheetName      = errors.New("xlsx: invalid sheet name")
	ErrDuplicateSheet = errors.New("xlsx: duplicate sheet name")
	ErrRaggedRows     = errors.New("xlsx: rows have different column counts")
	ErrBadNumber      = errors.New("xlsx: number is NaN or infinite")
	ErrTooLarge       = errors.New("xlsx: sheet exceeds row or column limits")
)

type CellKind int

const (
	KindText CellKind = iota
	KindNumber
)

// Cell is a typed cell value.
type Cell struct {
	Kind CellKind
	Num  float64
	Str  string
}

func Number(v float64) Cell { return Cell{Kind: KindNumber, Num: v} }

func Text(s string) Cell { return Cell{Kind: KindText, Str: s} }

type Sheet struct {
	Name string
	Rows [][]Cell
}

type Workbook struct {
	Sheets []Sheet
}

type Options struct {
	// Now stamps the document properties. Defaults to time.Now.
	Now func() time.Time
	// Creator is recorded as author and application name.
	Creator string
}

func (o Options) timestamp() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().UTC().Format("2006-01-02T15:04:05Z")
}

func (o Options) creator() string {
	if strings.TrimSpace(o.Creator) == "" {
		return "CityAnalysis"
	}
	return o.Creator
}

// Validate checks everything that would make the package unreadable. It
// runs before any byte is written.
func (wb Workbook) Validate() error {
	if len(wb.Sheets) == 0 {
		return ErrNoSheets
	}
	seen := map[string]bool{}
	for i, s := range wb.Sheets {
		if err := ValidSheetName(s.Name); err != nil {
			return fmt.Errorf("sheet %d: %w", i+1, err)
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateSheet, s.Name)
		}
		seen[key] = true

		if len(s.Rows) > maxRows {
			return fmt.Errorf("sheet %q: %w", s.Name, ErrTooLarge)
		}
		for r, row := range s.Rows {
			if len(row) != len(s.Rows[0]) {
				return fmt.Errorf("sheet %q row %d has %d cells, row 1 has %d: %w",
					s.Name, r+1, len(row), len(s.Rows[0]), ErrRaggedRows)
			}
			if len(row) > maxColumns {
				return fmt.Errorf("sheet %q: %w", s.Name, ErrTooLarge)
			}
			for c, cell := range row {
				if cell.Kind == KindNumber && (math.IsNaN(cell.Num) || math.IsInf(cell.Num, 0)) {
					return fmt.Errorf("sheet %q cell %s: %w", s.Name, CellRef(c+1, r+1), ErrBadNumber)
				}
			}
		}
	}
	return nil
}

// ValidSheetName reports whether name can title a worksheet: 1-31
// characters, none of []:*?/\ and no leading or trailing apostrophe.
func ValidSheetName(name string) error {
	if name == "" || len([]rune(name)) > maxSheetNameLen {
		return fmt.Errorf("%w: %q must be 1-%d characters", ErrSheetName, name, maxSheetNameLen)
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return fmt.Errorf("%w: %q contains a reserved character", ErrSheetName, name)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("%w: %q starts or ends with an apostrophe", ErrSheetName, name)
	}
	return nil
}
