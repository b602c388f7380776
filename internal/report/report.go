// Package report renders ranked kit buckets as plain text and as
// spreadsheet rows.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"cityanalysis/internal/aggregate"
	"cityanalysis/internal/format"
	"cityanalysis/internal/report/xlsx"
)

// Header describes the run a text report belongs to.
type Header struct {
	SourceFile string
	Era        string
	KitLabel   string
}

// Columns is the spreadsheet header row.
var Columns = []string{
	"Rank",
	"Building",
	"Size",
	"Street Requirement",
	"Efficiency (fragments/tile)",
	"Expected fragments/cycle",
	"Details",
}

// WriteText writes the human-readable ranking for one kit.
func WriteText(w io.Writer, h Header, buckets []aggregate.Bucket) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Source file: %s\n", h.SourceFile)
	fmt.Fprintf(bw, "Era: %s\n", h.Era)
	fmt.Fprintf(bw, "Kit type: %s\n", h.KitLabel)
	fmt.Fprintf(bw, "Total buildings: %d\n", len(buckets))

	for i, b := range buckets {
		fmt.Fprintf(bw, "\n%d. %s | size %s | street %s | efficiency %s fragments/tile\n",
			i+1, b.Name, b.SizeLabel, streetLabel(b), efficiencyLabel(b))
		fmt.Fprintf(bw, "   Expected fragments per cycle: %s\n", format.Number(b.Expected))
		for _, rec := range b.Records {
			fmt.Fprintf(bw, "   - %s\n", detail(rec, " chance"))
		}
	}
	return bw.Flush()
}

func streetLabel(b aggregate.Bucket) string {
	if !b.HasStreet {
		return "n/a"
	}
	return strconv.Itoa(b.Street)
}

func efficiencyLabel(b aggregate.Bucket) string {
	if !b.HasEfficiency {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", b.Efficiency)
}

// detail describes one contribution, e.g. "30 fragments (1 kit) (1h) @ 10%".
func detail(rec aggregate.Record, chanceSuffix string) string {
	var sb strings.Builder
	sb.WriteString(format.Number(rec.Fragments))
	sb.WriteString(" fragments")
	sb.WriteString(rec.Note)
	if rec.TimeLabel != "" {
		sb.WriteString(" (" + rec.TimeLabel + ")")
	}
	if rec.HasProbability {
		sb.WriteString(" @ " + format.Probability(rec.Probability) + chanceSuffix)
	}
	if rec.NeedsMotivation {
		sb.WriteString(" (needs motivation)")
	}
	return sb.String()
}

// Details joins every record of a bucket, one per line.
func Details(b aggregate.Bucket) string {
	lines := make([]string, 0, len(b.Records))
	for _, rec := range b.Records {
		lines = append(lines, detail(rec, ""))
	}
	return strings.Join(lines, "\n")
}

// SheetRows builds the header plus one row per ranked bucket.
func SheetRows(buckets []aggregate.Bucket) [][]xlsx.Cell {
	header := make([]xlsx.Cell, len(Columns))
	for i, c := range Columns {
		header[i] = xlsx.Text(c)
	}
	rows := [][]xlsx.Cell{header}
	for i, b := range buckets {
		street := xlsx.Text("n/a")
		if b.HasStreet {
			street = xlsx.Number(float64(b.Street))
		}
		eff := xlsx.Text("n/a")
		if b.HasEfficiency {
			eff = xlsx.Number(round6(b.Efficiency))
		}
		rows = append(rows, []xlsx.Cell{
			xlsx.Number(float64(i + 1)),
			xlsx.Text(b.Name),
			xlsx.Text(b.SizeLabel),
			street,
			eff,
			xlsx.Number(round6(b.Expected)),
			xlsx.Text(Details(b)),
		})
	}
	return rows
}

// Workbook has one sheet per kit, named by its label, in report order.
func Workbook(rep aggregate.Report) xlsx.Workbook {
	var wb xlsx.Workbook
	for _, k := range rep.Kits {
		wb.Sheets = append(wb.Sheets, xlsx.Sheet{Name: k.Kit.Label, Rows: SheetRows(k.Buckets)})
	}
	return wb
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
