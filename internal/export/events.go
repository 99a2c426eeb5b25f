// Package export renders event history as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"onecore/internal/domain"
)

// SheetName is the title of the single worksheet.
const SheetName = "Histórico de Eventos"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timeLayout = "2006-01-02 15:04:05"

var columns = []string{"ID", "Tipo", "Descripción", "Usuario", "Documento ID", "Fecha y Hora"}

var columnWidths = []float64{10, 25, 60, 20, 15, 22}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

// WriteEvents writes events as an xlsx workbook to w, one row per event in
// the given order below a styled, frozen header row.
func WriteEvents(w io.Writer, events []domain.EventLog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export.WriteEvents: naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return fmt.Errorf("export.WriteEvents: header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return fmt.Errorf("export.WriteEvents: cell style: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("export.WriteEvents: header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("export.WriteEvents: header style: %w", err)
	}

	for i := range events {
		row := i + 2
		values := eventRow(&events[i])
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("export.WriteEvents: row %d: %w", row, err)
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(columns), row)
		if err := f.SetCellStyle(SheetName, first, end, cellStyle); err != nil {
			return fmt.Errorf("export.WriteEvents: row %d style: %w", row, err)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("export.WriteEvents: column width: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export.WriteEvents: freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export.WriteEvents: %w", err)
	}
	return nil
}

func eventRow(e *domain.EventLog) []string {
	username := "-"
	if e.Username != nil && *e.Username != "" {
		username = *e.Username
	}
	documentID := "-"
	if e.DocumentID != nil {
		documentID = e.DocumentID.String()
	}
	return []string{
		e.ID.String(),
		e.EventType.Label(),
		e.Description,
		username,
		documentID,
		e.CreatedAt.Format(timeLayout),
	}
}
