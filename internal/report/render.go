package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const sheetName = "Hot Functions"

// WriteFile renders entries into path, choosing the format from the
// extension: ".xlsx" produces a spreadsheet, anything else plain text.
func WriteFile(path string, entries []Entry, countName string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXlsx(path, entries, countName)
	}
	return writeTextFile(path, entries, countName)
}

func cellName(col, row int) string {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	name, err := excelize.JoinCellName(columnName, row)
	if err != nil {
		return ""
	}
	return name
}

func writeXlsx(path string, entries []Entry, countName string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	headers := []string{"Function", "Self " + countName, "Total " + countName}
	for col, h := range headers {
		_ = f.SetCellValue(sheetName, cellName(col+1, 1), h)
		_ = f.SetCellStyle(sheetName, cellName(col+1, 1), cellName(col+1, 1), headerStyle)
	}
	for i, e := range entries {
		row := i + 2
		_ = f.SetCellValue(sheetName, cellName(1, row), e.Name)
		_ = f.SetCellValue(sheetName, cellName(2, row), e.Self)
		_ = f.SetCellValue(sheetName, cellName(3, row), e.Total)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 60)
	return errors.Wrap(f.SaveAs(path), "writing xlsx report")
}

func writeTextFile(path string, entries []Entry, countName string) error {
	var sb strings.Builder
	if err := WriteText(&sb, entries, countName); err != nil {
		return err
	}
	return errors.Wrap(writeWholeFile(path, sb.String()), "writing text report")
}

// WriteText renders a fixed-width table. Counts get thousands separators so
// large profiles stay readable.
func WriteText(w io.Writer, entries []Entry, countName string) error {
	p := message.NewPrinter(language.English)
	if _, err := fmt.Fprintf(w, "%-60s %15s %15s\n", "Function", "Self "+countName, "Total "+countName); err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name
		if len(name) > 60 {
			name = name[:57] + "..."
		}
		if _, err := fmt.Fprintf(w, "%-60s %15s %15s\n", name,
			p.Sprintf("%d", e.Self), p.Sprintf("%d", e.Total)); err != nil {
			return err
		}
	}
	return nil
}
