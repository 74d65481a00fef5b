package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/vet-records/internal/entity"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

const sheet = "Records"

// maxCellChars keeps long diagnosis/treatment blocks readable in a cell.
const maxCellChars = 1000

// RecordLister is the slice of the record store the export needs.
type RecordLister interface {
	List(ctx context.Context, filter repository.ListFilter) ([]*entity.MedicalRecord, error)
}

// Service produces XLSX bytes for record exports.
type Service struct {
	records RecordLister
	logger  *slog.Logger
}

func NewService(records RecordLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

var headers = []string{
	"Created At",
	"File",
	"Status",
	"Strategy",
	"Pet Name",
	"Species",
	"Breed",
	"Age",
	"Owner",
	"Diagnosis",
	"Treatment",
	"Veterinarian",
	"Date",
}

// ExportRecordsXLSX returns a workbook with one row per record matching filter, newest first.
func (s *Service) ExportRecordsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v string) {
			if v == "" {
				return
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.UTC().Format(time.RFC3339))
		write(2, r.Filename)
		write(3, string(r.Status))
		write(4, r.Strategy)
		for j, name := range entity.FieldNames {
			write(5+j, truncate(r.StructuredData.Get(name), maxCellChars))
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 22) // created
	_ = f.SetColWidth(sheet, "B", "B", 32) // file
	_ = f.SetColWidth(sheet, "C", "D", 12)
	_ = f.SetColWidth(sheet, "E", "I", 18)
	_ = f.SetColWidth(sheet, "J", "K", 48) // diagnosis, treatment
	_ = f.SetColWidth(sheet, "L", "M", 22)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
