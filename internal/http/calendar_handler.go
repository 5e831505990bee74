package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

type calendarService interface {
	MonthOptions() []string
	ForMonth(monthYear, restrictToUser string) []booking.Reservation
	OpenView(viewerID, monthYear string) booking.Page
	Move(viewerID string, delta int) (booking.Page, error)
}

// CalendarHandler serves the month listings. Paged views keep a per-viewer
// cursor; the viewer navigates relative to it until it expires.
type CalendarHandler struct {
	service   calendarService
	responder responder
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, responder: newResponder(logger)}
}

func (h *CalendarHandler) Months(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, monthsResponse{Months: h.service.MonthOptions()})
}

func (h *CalendarHandler) Open(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req openViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	page := h.service.OpenView(user.ID, strings.TrimSpace(req.Month))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(page))
}

func (h *CalendarHandler) Move(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req movePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	page, err := h.service.Move(user.ID, req.Delta)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(page))
}

// Mine lists the reservations of the acting user for one month, without
// opening a pagination cursor.
func (h *CalendarHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	user, _ := ActingUserFromContext(r.Context())
	monthYear := strings.TrimSpace(r.URL.Query().Get("month"))

	reservations := h.service.ForMonth(monthYear, user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationListResponse{
		Reservations: toReservationDTOs(reservations),
	})
}

type openViewRequest struct {
	Month string `json:"month"`
}

type movePageRequest struct {
	Delta int `json:"delta"`
}

type pageDTO struct {
	Items      []reservationDTO `json:"items"`
	Index      int              `json:"index"`
	TotalPages int              `json:"total_pages"`
	TotalItems int              `json:"total_items"`
}

func toPageDTO(page booking.Page) pageDTO {
	return pageDTO{
		Items:      toReservationDTOs(page.Items),
		Index:      page.Index,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}
}
