package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName = "Sheet1"
	maxSheetNameLen  = 31
	moneyNumFmt      = "#,##0.00"
	ratioNumFmt      = "0.00"
)

// WriteXLSX writes a workbook with one sheet per scenario.
func WriteXLSX(w io.Writer, results []forecast.Projection) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	used := make(map[string]bool)
	for i, result := range results {
		name := uniqueSheetName(result.Name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheetName, name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, result, styles); err != nil {
			return err
		}
	}

	if len(results) == 0 {
		if err := writeHeaderRow(f, defaultSheetName, styles.header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header int
	money  int
	ratio  int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var styles sheetStyles
	var err error

	styles.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return styles, fmt.Errorf("failed to create header style: %w", err)
	}

	money := moneyNumFmt
	styles.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &money})
	if err != nil {
		return styles, fmt.Errorf("failed to create currency style: %w", err)
	}

	ratio := ratioNumFmt
	styles.ratio, err = f.NewStyle(&excelize.Style{CustomNumFmt: &ratio})
	if err != nil {
		return styles, fmt.Errorf("failed to create ratio style: %w", err)
	}
	return styles, nil
}

func writeHeaderRow(f *excelize.File, sheet string, style int) error {
	headers := Headers()
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSheet(f *excelize.File, sheet string, result forecast.Projection, styles sheetStyles) error {
	if err := writeHeaderRow(f, sheet, styles.header); err != nil {
		return err
	}

	for i, out := range result.Outputs {
		date := out.Period().String()
		row := make([]interface{}, 0, len(columns)+4)
		row = append(row, result.Name, date, out.MonthIndex)
		for _, c := range columns {
			row = append(row, c.value(out).Round(c.kind.places()).InexactFloat64())
		}
		row = append(row, strings.Join(result.Notes[date], "; "))

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", date, err)
		}
	}

	if len(result.Outputs) == 0 {
		return nil
	}

	lastRow := len(result.Outputs) + 1
	for i, c := range columns {
		col := i + 4
		from, _ := excelize.CoordinatesToCellName(col, 2)
		to, _ := excelize.CoordinatesToCellName(col, lastRow)
		style := styles.ratio
		if c.kind == kindMoney {
			style = styles.money
		}
		if err := f.SetCellStyle(sheet, from, to, style); err != nil {
			return err
		}
	}

	firstMetric, _ := excelize.ColumnNumberToName(4)
	lastMetric, _ := excelize.ColumnNumberToName(len(columns) + 3)
	return f.SetColWidth(sheet, firstMetric, lastMetric, 16)
}

// uniqueSheetName turns a scenario name into a valid, unused sheet name.
func uniqueSheetName(name string, used map[string]bool) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	cleaned = strings.Trim(cleaned, "'")
	if cleaned == "" {
		cleaned = "scenario"
	}
	cleaned = truncateRunes(cleaned, maxSheetNameLen)

	candidate := cleaned
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(cleaned, maxSheetNameLen-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
