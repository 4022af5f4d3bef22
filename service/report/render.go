package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// cell converts a row value to something both writers print sensibly.
func cell(v interface{}) interface{} {
	switch t := v.(type) {
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	case time.Time:
		return t.Format("2006-01-02 15:04")
	case nil:
		return ""
	}
	return v
}

// XLSX writes the report to a single sheet with a bold header row and a summary block below.
func (r *Report) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A1", r.Title); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A2", "Generated "+r.GeneratedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}

	const headerRow = 4
	for i, c := range r.Columns {
		name, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheet, name, c.Label); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(r.Columns), headerRow)
	if err := f.SetCellStyle(sheet, first, last, bold); err != nil {
		return nil, err
	}

	for ri, row := range r.Rows {
		for ci, c := range r.Columns {
			name, _ := excelize.CoordinatesToCellName(ci+1, headerRow+1+ri)
			if err := f.SetCellValue(sheet, name, cell(row[c.Key])); err != nil {
				return nil, err
			}
		}
	}

	line := headerRow + len(r.Rows) + 2
	for _, k := range summaryKeys(r.Summary) {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", line), k); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", line), fmt.Sprint(r.Summary[k])); err != nil {
			return nil, err
		}
		line++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF writes the report as a landscape A4 table.
func (r *Report) PDF() ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+r.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	width := 277.0
	if len(r.Columns) > 0 {
		width /= float64(len(r.Columns))
	}
	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range r.Columns {
			pdf.CellFormat(width, 6, tr(c.Label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	for _, row := range r.Rows {
		if pdf.GetY()+6 > pageHeight-10 {
			pdf.AddPage()
			header()
		}
		for _, c := range r.Columns {
			text := fmt.Sprint(cell(row[c.Key]))
			for len(text) > 3 && pdf.GetStringWidth(text) > width-2 {
				text = text[:len(text)-4] + "..."
			}
			pdf.CellFormat(width, 6, tr(text), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 9)
	for _, k := range summaryKeys(r.Summary) {
		pdf.CellFormat(50, 6, tr(k), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprint(r.Summary[k])), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
