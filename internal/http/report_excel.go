package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"school-inventory/internal/domain"
)

// LowStockExportHeader lists the columns of the low-stock workbook.
var LowStockExportHeader = []string{
	"Name",
	"Category",
	"Brand",
	"Model",
	"Available",
	"Total",
	"State",
}

// MovementExportHeader lists the columns of the movement-history workbook.
var MovementExportHeader = []string{
	"Date",
	"Time",
	"Equipment",
	"Action",
	"User",
}

// GenerateLowStockExport builds the low-stock workbook, ordered as given.
func GenerateLowStockExport(items []*domain.Equipment) ([]byte, error) {
	rows := make([][]any, 0, len(items))
	for _, e := range items {
		rows = append(rows, []any{
			e.Name,
			e.CategoryName,
			e.Brand,
			e.Model,
			e.AvailableQuantity,
			e.Quantity,
			string(e.State),
		})
	}
	widths := []float64{30, 20, 18, 18, 12, 12, 16}
	return generateReportExcel("Low Stock", LowStockExportHeader, widths, rows)
}

// GenerateMovementExport builds the audit-history workbook.
func GenerateMovementExport(entries []*domain.HistoryEntry) ([]byte, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		user := e.ChangedByName
		if user == "" {
			user = e.ChangedBy
		}
		rows = append(rows, []any{
			e.CreatedAt.Format("2006-01-02"),
			e.CreatedAt.Format("15:04:05"),
			e.EquipmentName,
			string(e.Action),
			user,
		})
	}
	widths := []float64{14, 12, 30, 12, 26}
	return generateReportExcel("Movements", MovementExportHeader, widths, rows)
}

// generateReportExcel writes one styled sheet: bold filled header row,
// fixed column widths, frozen header.
func generateReportExcel(sheetName string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() here: WriteTo needs the file open.

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(widths) && widths[i] > 0 {
			if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
