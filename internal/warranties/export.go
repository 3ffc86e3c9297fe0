package warranties

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Warranties"

var exportHeader = []any{
	"Warranty Code",
	"Order Number",
	"Product",
	"Status",
	"Warranty Date",
	"Expiry Date",
	"Period (months)",
	"Issue Description",
	"Admin Notes",
	"Created At",
}

func writeWorkbook(w io.Writer, items []Warranty, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Warranty export",
		Created: generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			item.WarrantyCode,
			item.OrderNumber,
			item.ProductName,
			string(item.Status),
			item.WarrantyDate.Format(time.DateOnly),
			item.ExpiryDate.Format(time.DateOnly),
			item.WarrantyPeriod,
			derefText(item.IssueDescription),
			derefText(item.AdminNotes),
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "C", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "H", "I", 40); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func derefText(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
