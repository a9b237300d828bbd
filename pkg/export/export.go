// Package export renders contract records as JSON, CSV or a console table.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sternrassler/fpds-client/pkg/apierror"
	"github.com/Sternrassler/fpds-client/pkg/records"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatTable}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", apierror.Validation("format", fmt.Sprintf("unknown output format %q", s), "json", "csv", "table")
}

// Write renders recs to w in the given format.
func Write(w io.Writer, format Format, recs []records.ContractRecord) error {
	switch format {
	case FormatJSON:
		return JSON(w, recs)
	case FormatCSV:
		return CSV(w, recs)
	case FormatTable:
		return Table(w, recs)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// JSON writes recs as a 2-space indented array. Field order follows
// records.Fields. Nil or empty input renders as [].
func JSON(w io.Writer, recs []records.ContractRecord) error {
	if recs == nil {
		recs = []records.ContractRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(recs)
}

// JSONLines writes one compact JSON object per record, newline terminated.
func JSONLines(w io.Writer, recs []records.ContractRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// CSV writes a header row of field names and one row per record.
// Record metadata is not part of the CSV layout.
func CSV(w io.Writer, recs []records.ContractRecord) error {
	return WriteCSV(w, records.FieldNames(), recordRows(recs))
}

// CSVHeader writes only the CSV header row.
func CSVHeader(w io.Writer) error {
	return writeRows(w, [][]string{records.FieldNames()})
}

// CSVRows writes recs as CSV rows without a header.
func CSVRows(w io.Writer, recs []records.ContractRecord) error {
	return writeRows(w, recordRows(recs))
}

// WriteCSV writes header and rows. A value containing a comma or a double
// quote is wrapped in double quotes with inner quotes doubled; every other
// value is written verbatim.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	return writeRows(w, append([][]string{header}, rows...))
}

func recordRows(recs []records.ContractRecord) [][]string {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = r.Values()
	}
	return rows
}

func writeRows(w io.Writer, rows [][]string) error {
	var b strings.Builder
	for _, row := range rows {
		writeRow(&b, row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, row []string) {
	for i, v := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(v))
	}
	b.WriteByte('\n')
}

func escapeCSV(v string) string {
	if !strings.ContainsAny(v, `,"`) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Table writes a console summary of recs with a total obligated footer.
func Table(w io.Writer, recs []records.ContractRecord) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Contract", "Mod", "Award Date", "Vendor", "NAICS", "Obligated"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Vendor", WidthMax: 40},
		{Name: "Obligated", Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var total float64
	for _, r := range recs {
		total += r.ObligatedAmount
		t.AppendRow(table.Row{
			r.ContractNumber,
			r.ModificationNumber,
			r.AwardDate,
			r.VendorName,
			r.NAICSCode,
			formatAmount(r.ObligatedAmount),
		})
	}
	t.AppendFooter(table.Row{"", "", "", strconv.Itoa(len(recs)) + " records", "Total", formatAmount(total)})
	t.Render()
	return nil
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
