package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reports "helpdesk-cloud/internal/reports/domain"
)

// ExportMeta carries header fields shared by the PDF and XLSX layouts.
type ExportMeta struct {
	BranchName string
	Period     string
	Category   string
}

// BuildUsagePDF renders report rows as a PDF table.
func BuildUsagePDF(meta ExportMeta, rows []reports.Row) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Utility Usage Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Branch: %s", meta.BranchName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", meta.Period))
	pdf.Ln(5)
	if meta.Category != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Category: %s", meta.Category))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(24, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Submitted By", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Customers", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Gas Usage", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Water Usage", "1", 0, "C", false, 0, "")
	pdf.CellFormat(88, 6, "Electricity Usage", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(24, 6, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, row.SubmittedBy, "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d", row.CustomerCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, gasCell(row.Gas), "1", 0, "R", false, 0, "")
		pdf.CellFormat(80, 6, waterCell(row.Water), "1", 0, "L", false, 0, "")
		pdf.CellFormat(88, 6, electricityCell(row.Electricity), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildUsageXLSX renders report rows as a workbook: one sheet per
// category plus a record summary, so multi-location water and
// multi-meter electricity entries stay one line each.
func BuildUsageXLSX(meta ExportMeta, rows []reports.Row) ([]byte, error) {
	f := excelize.NewFile()
	recordsSheet := "records"
	waterSheet := "water"
	electricitySheet := "electricity"
	f.SetSheetName("Sheet1", recordsSheet)
	if _, err := f.NewSheet(waterSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(electricitySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(recordsSheet, "A1", "Daily Utility Usage Report")
	_ = f.SetCellValue(recordsSheet, "A2", "Branch")
	_ = f.SetCellValue(recordsSheet, "B2", meta.BranchName)
	_ = f.SetCellValue(recordsSheet, "A3", "Period")
	_ = f.SetCellValue(recordsSheet, "B3", meta.Period)

	headers := []string{"Date", "Submitted By", "Branch", "Customers", "Gas Location", "Gas Opening", "Gas Closing", "Gas Usage"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		_ = f.SetCellValue(recordsSheet, cell, header)
	}
	for i, row := range rows {
		line := i + 6
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("A%d", line), row.Date)
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("B%d", line), row.SubmittedBy)
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("C%d", line), row.Branch)
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("D%d", line), row.CustomerCount)
		if row.Gas != nil {
			_ = f.SetCellValue(recordsSheet, fmt.Sprintf("E%d", line), row.Gas.Location)
			setNumberCell(f, recordsSheet, fmt.Sprintf("F%d", line), row.Gas.Opening)
			setNumberCell(f, recordsSheet, fmt.Sprintf("G%d", line), row.Gas.Closing)
			setNumberCell(f, recordsSheet, fmt.Sprintf("H%d", line), row.Gas.Usage)
		}
	}

	waterHeaders := []string{"Date", "Location", "Opening", "Closing", "Usage"}
	for i, header := range waterHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(waterSheet, cell, header)
	}
	waterLine := 2
	for _, row := range rows {
		for _, entry := range row.Water {
			_ = f.SetCellValue(waterSheet, fmt.Sprintf("A%d", waterLine), row.Date)
			_ = f.SetCellValue(waterSheet, fmt.Sprintf("B%d", waterLine), entry.Location)
			setNumberCell(f, waterSheet, fmt.Sprintf("C%d", waterLine), entry.Opening)
			setNumberCell(f, waterSheet, fmt.Sprintf("D%d", waterLine), entry.Closing)
			setNumberCell(f, waterSheet, fmt.Sprintf("E%d", waterLine), entry.Usage)
			waterLine++
		}
	}

	electricityHeaders := []string{"Date", "Meter", "Mode", "WBP Opening", "WBP Closing", "WBP Usage", "LWBP Opening", "LWBP Closing", "LWBP Usage", "Total Usage"}
	for i, header := range electricityHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(electricitySheet, cell, header)
	}
	electricityLine := 2
	for _, row := range rows {
		for _, entry := range row.Electricity {
			meter := entry.MeterName
			if meter == "" {
				meter = entry.Key
			}
			_ = f.SetCellValue(electricitySheet, fmt.Sprintf("A%d", electricityLine), row.Date)
			_ = f.SetCellValue(electricitySheet, fmt.Sprintf("B%d", electricityLine), meter)
			_ = f.SetCellValue(electricitySheet, fmt.Sprintf("C%d", electricityLine), entry.Mode)
			setNumberCell(f, electricitySheet, fmt.Sprintf("D%d", electricityLine), entry.WBPOpening)
			setNumberCell(f, electricitySheet, fmt.Sprintf("E%d", electricityLine), entry.WBPClosing)
			setNumberCell(f, electricitySheet, fmt.Sprintf("F%d", electricityLine), entry.WBPUsage)
			setNumberCell(f, electricitySheet, fmt.Sprintf("G%d", electricityLine), entry.LWBPOpening)
			setNumberCell(f, electricitySheet, fmt.Sprintf("H%d", electricityLine), entry.LWBPClosing)
			setNumberCell(f, electricitySheet, fmt.Sprintf("I%d", electricityLine), entry.LWBPUsage)
			setNumberCell(f, electricitySheet, fmt.Sprintf("J%d", electricityLine), entry.TotalUsage)
			electricityLine++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setNumberCell(f *excelize.File, sheet, cell string, value *float64) {
	if value == nil {
		return
	}
	_ = f.SetCellValue(sheet, cell, *value)
}

func gasCell(gas *reports.GasUsage) string {
	if gas == nil || gas.Usage == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *gas.Usage)
}

func waterCell(entries []reports.WaterUsage) string {
	if len(entries) == 0 {
		return "-"
	}
	out := ""
	for i, entry := range entries {
		if i > 0 {
			out += "; "
		}
		if entry.Usage == nil {
			out += fmt.Sprintf("%s: -", entry.Location)
			continue
		}
		out += fmt.Sprintf("%s: %.2f", entry.Location, *entry.Usage)
	}
	return out
}

func electricityCell(entries []reports.ElectricityUsage) string {
	if len(entries) == 0 {
		return "-"
	}
	out := ""
	for i, entry := range entries {
		if i > 0 {
			out += "; "
		}
		label := entry.MeterName
		if label == "" {
			label = entry.Key
		}
		if entry.TotalUsage == nil {
			out += fmt.Sprintf("%s: -", label)
			continue
		}
		out += fmt.Sprintf("%s: %.2f", label, *entry.TotalUsage)
	}
	return out
}
