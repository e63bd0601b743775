// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []forecast.Projection) {
	_ = WritePretty(os.Stdout, results)
}

// WritePretty writes one summary table per scenario.
func WritePretty(w io.Writer, results []forecast.Projection) error {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		if _, err := fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "Date    | %14s | %14s | %14s | %14s | %14s | Notes\n",
			"Revenue", "EBITDA", "Net Income", "Net Cash Flow", "Cash")
		fmt.Fprintf(w, "____    | %14s | %14s | %14s | %14s | %14s | _____\n",
			strings.Repeat("_", 14), strings.Repeat("_", 14), strings.Repeat("_", 14),
			strings.Repeat("_", 14), strings.Repeat("_", 14))
		for _, out := range result.Outputs {
			date := out.Period().String()
			// x/text needs floats for grouping; display only.
			if _, err := p.Fprintf(w, "%s | %14.2f | %14.2f | %14.2f | %14.2f | %14.2f | %s\n",
				date,
				out.Revenue.InexactFloat64(),
				out.EBITDA.InexactFloat64(),
				out.NetIncome.InexactFloat64(),
				out.NetCashFlow.InexactFloat64(),
				out.CumulativeCash.InexactFloat64(),
				strings.Join(result.Notes[date], ","),
			); err != nil {
				return err
			}
		}
		if len(results) > 1 && i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []forecast.Projection) {
	_ = WriteCSV(os.Stdout, results)
}

// WriteCSV writes one row per scenario and month with every metric.
func WriteCSV(w io.Writer, results []forecast.Projection) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, result := range results {
		for _, out := range result.Outputs {
			if err := writer.Write(csvRecord(result, out)); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV rendition of the results.
func CsvString(results []forecast.Projection) string {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, results); err != nil {
		return ""
	}
	return buf.String()
}

func csvRecord(result forecast.Projection, out forecast.FinancialOutput) []string {
	date := out.Period().String()
	record := make([]string, 0, len(columns)+4)
	record = append(record, result.Name, date, strconv.Itoa(out.MonthIndex))
	for _, c := range columns {
		record = append(record, c.value(out).StringFixed(c.kind.places()))
	}
	return append(record, strings.Join(result.Notes[date], ";"))
}

// Write renders the results in the given format.
func Write(w io.Writer, format string, results []forecast.Projection) error {
	switch format {
	case constants.OutputFormatPretty:
		return WritePretty(w, results)
	case constants.OutputFormatCSV:
		return WriteCSV(w, results)
	case constants.OutputFormatXLSX:
		return WriteXLSX(w, results)
	case constants.OutputFormatPDF:
		return WritePDF(w, results)
	default:
		return fmt.Errorf("unsupported output format %s", format)
	}
}

// ContentType is the MIME type of a rendered format.
func ContentType(format string) string {
	switch format {
	case constants.OutputFormatCSV:
		return "text/csv"
	case constants.OutputFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case constants.OutputFormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileExtension is the conventional file extension of a rendered format.
func FileExtension(format string) string {
	switch format {
	case constants.OutputFormatCSV, constants.OutputFormatXLSX, constants.OutputFormatPDF:
		return "." + format
	default:
		return ".txt"
	}
}
