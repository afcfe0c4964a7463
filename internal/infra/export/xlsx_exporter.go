// Package export renders timesheets as XLSX workbooks.
package export

import (
	"io"

	"tracker/internal/domain/entity"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
	"tracker/internal/util"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName       = "Timesheet"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"Date", "Project", "Description", "Start", "End", "Duration (min)", "Duration", "Billable", "Type"}

type xlsxExporter struct{}

// NewXLSXExporter is the excelize-backed TimesheetExporter.
func NewXLSXExporter() service.TimesheetExporter {
	return xlsxExporter{}
}

func (xlsxExporter) ContentType() string {
	return xlsxContentType
}

// Export writes one row per entry in the given order, then a total row.
func (xlsxExporter) Export(w io.Writer, entries []*entity.TimeEntry, projectNames map[uuid.UUID]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return errors.Wrap(err, "name sheet")
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return errors.Wrap(err, "style header")
	}

	total := 0
	for i, entry := range entries {
		total += entry.Duration
		row := []any{
			entry.Date.Format(entity.DateLayout),
			projectNames[entry.ProjectID],
			entry.Description,
			entry.StartTime,
			entry.EndTime,
			entry.Duration,
			util.FormatMinutes(entry.Duration),
			entry.Billable,
			string(entry.Type),
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	totalRow := len(entries) + 2
	if err := setRow(f, totalRow, []any{"Total", nil, nil, nil, nil, total, util.FormatMinutes(total)}); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, totalRow, totalRow, bold); err != nil {
		return errors.Wrap(err, "style total")
	}

	if err := f.SetColWidth(sheetName, "C", "C", 40); err != nil {
		return errors.Wrap(err, "size description column")
	}

	return errors.Wrap(f.Write(w), "write workbook")
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(f.SetSheetRow(sheetName, cell, &values), "write row %d", row)
}
