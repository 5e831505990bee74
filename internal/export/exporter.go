// Package export produces the spreadsheet artifact of the full reservation
// history and delivers it, either on demand behind a passcode gate or on the
// twice daily schedule by email.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

// WorkbookFilename is the attachment name used for every export artifact.
const WorkbookFilename = "agendamentos_completo.xlsx"

const sheetName = "Agendamentos"

var headers = []struct {
	title string
	width float64
}{
	{"Data", 12},
	{"Horário", 16},
	{"Sala", 16},
	{"Título", 40},
	{"Responsável (nome)", 20},
	{"Responsável (id)", 20},
	{"Usuário (nome)", 20},
	{"Usuário (id)", 20},
	{"Participantes (tags)", 40},
	{"Status", 14},
}

// Exporter renders the reservation collection into an xlsx workbook.
// Cancelled reservations are included; the export is the historical record.
type Exporter struct {
	store *booking.Store
}

// NewExporter wires the exporter over the reservation store.
func NewExporter(store *booking.Store) *Exporter {
	return &Exporter{store: store}
}

// WriteWorkbook renders the full collection and writes the workbook to w.
func (e *Exporter) WriteWorkbook(w io.Writer) error {
	file, err := buildWorkbook(e.store.All())
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(reservations []booking.Reservation) (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range headers {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve column %d: %w", i+1, err)
		}
		if err := file.SetColWidth(sheetName, column, column, h.width); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", column, err)
		}
	}

	titles := make([]interface{}, len(headers))
	for i, h := range headers {
		titles[i] = h.title
	}
	if err := file.SetSheetRow(sheetName, "A1", &titles); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range reservations {
		row := []interface{}{
			r.Date,
			r.TimeRange,
			r.Room,
			r.Title,
			r.Organizer.DisplayName,
			r.Organizer.ID,
			r.Organizer.DisplayName,
			r.Organizer.ID,
			participantTags(r.Participants),
			string(r.Status),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", r.ID, err)
		}
	}

	return file, nil
}

func participantTags(participants []booking.Participant) string {
	if len(participants) == 0 {
		return ""
	}
	tags := make([]string, len(participants))
	for i, p := range participants {
		tags[i] = "<@" + p.ID + ">"
	}
	return strings.Join(tags, ", ")
}
