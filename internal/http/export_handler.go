package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/export"
)

type passcodeGate interface {
	Verify(passcode string) error
}

type workbookWriter interface {
	WriteWorkbook(w io.Writer) error
}

// ExportHandler streams the full history spreadsheet. Downloads are gated by
// the shared export passcode.
type ExportHandler struct {
	gate      passcodeGate
	exporter  workbookWriter
	responder responder
}

func NewExportHandler(gate passcodeGate, exporter workbookWriter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{gate: gate, exporter: exporter, responder: newResponder(logger)}
}

func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gate == nil || h.exporter == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.gate.Verify(req.Passcode); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.WorkbookFilename+`"`)
	if err := h.exporter.WriteWorkbook(w); err != nil {
		// Headers are already on the wire; all that is left is logging.
		handlerLogger(r.Context(), h.responder.logger, "export", "download").Error("failed to stream workbook", "error", err)
	}
}

type exportRequest struct {
	Passcode string `json:"passcode"`
}
