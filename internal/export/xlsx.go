package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// Service produces XLSX workbooks from parsed batches. The analytics
// consumers take spreadsheets alongside the JSON feed.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookBytes returns an XLSX workbook with one row per final record,
// flattened across the whole batch in report order.
func (s *Service) WorkbookBytes(out entity.OutputBatch) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Records"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Message",
		"Date",
		"Division",
		"Operation",
		"Crop",
		"Daily Area",
		"Total Area",
		"Daily Yield",
		"Total Yield",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	rows := 0
	for _, report := range out.Reports {
		for _, rec := range report.Parsed {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			write(1, report.MessageNumber)
			write(2, rec.Date)
			write(3, rec.Division)
			write(4, strOrEmpty(rec.Operation))
			write(5, strOrEmpty(rec.Crop))
			writeNumber(f, sheet, 6, row, rec.DailyArea)
			writeNumber(f, sheet, 7, row, rec.TotalArea)
			writeNumber(f, sheet, 8, row, rec.DailyYield)
			writeNumber(f, sheet, 9, row, rec.TotalYield)
			row++
			rows++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "E", 34)
	_ = f.SetColWidth(sheet, "F", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteXLSX writes the workbook to a file.
func (s *Service) WriteXLSX(path string, out entity.OutputBatch) error {
	b, err := s.WorkbookBytes(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeNumber(f *excelize.File, sheet string, col, row int, v *float64) {
	if v == nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, *v)
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
