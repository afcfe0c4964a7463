package service

import (
	"io"

	"tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// TimesheetExporter renders time entries as a spreadsheet.
type TimesheetExporter interface {
	// Export writes entries to w. projectNames resolves ProjectID for display.
	Export(w io.Writer, entries []*entity.TimeEntry, projectNames map[uuid.UUID]string) error

	// ContentType is the MIME type of the written document.
	ContentType() string
}
