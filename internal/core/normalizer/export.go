package normalizer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

var errMalformedTable = errors.New("table is malformed")

// TableCSV encodes a well-formed table with the header row first. CR LF
// inside a cell is written as LF, which is what a CSV reader returns anyway.
func TableCSV(table TableView) ([]byte, error) {
	if table.Malformed {
		return nil, domain.WrapError(domain.ErrInvalidInput, "table csv", errMalformedTable)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := writeCSVRecord(w, &buf, table.Headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range table.Rows {
		if err := writeCSVRecord(w, &buf, row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// writeCSVRecord quotes a lone empty field; csv.Writer would emit a blank
// line, which readers skip.
func writeCSVRecord(w *csv.Writer, buf *bytes.Buffer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	fields := make([]string, len(record))
	for i, field := range record {
		fields[i] = strings.ReplaceAll(field, "\r\n", "\n")
	}
	return w.Write(fields)
}

// TableXLSX renders a well-formed table as a single-sheet workbook.
func TableXLSX(table TableView) ([]byte, error) {
	if table.Malformed {
		return nil, domain.WrapError(domain.ErrInvalidInput, "table xlsx", errMalformedTable)
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := sheetName(table.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if len(table.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel limits sheet names to 31 characters and forbids a few symbols.
func sheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "Table"
	}
	if runes := []rune(cleaned); len(runes) > 31 {
		cleaned = string(runes[:31])
	}
	return cleaned
}
