package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

type cancelService interface {
	Cancel(ctx context.Context, reservationID, userID string) error
	Cancellable(userID, monthYear string) []booking.Reservation
	CancellableMonths(userID string) []string
}

type attendanceService interface {
	Record(ctx context.Context, reservationID, participantID string, decision booking.AttendanceDecision) error
	Status(reservationID string) (booking.AttendanceStatus, error)
}

// ReservationHandler serves the per-reservation operations: cancellation,
// attendance votes and the cancellable listing.
type ReservationHandler struct {
	cancel     cancelService
	attendance attendanceService
	responder  responder
}

func NewReservationHandler(cancel cancelService, attendance attendanceService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{cancel: cancel, attendance: attendance, responder: newResponder(logger)}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.cancel == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	if err := h.cancel.Cancel(r.Context(), reservationID, user.ID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) CancellableMonths(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.cancel == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	h.responder.writeJSON(r.Context(), w, http.StatusOK, monthsResponse{
		Months: h.cancel.CancellableMonths(user.ID),
	})
}

func (h *ReservationHandler) Cancellable(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.cancel == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	user, _ := ActingUserFromContext(r.Context())
	monthYear := strings.TrimSpace(r.URL.Query().Get("month"))

	reservations := h.cancel.Cancellable(user.ID, monthYear)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationListResponse{
		Reservations: toReservationDTOs(reservations),
	})
}

func (h *ReservationHandler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.attendance == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	decision, ok := parseAttendanceDecision(req.Decision)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAttendanceVote)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	if err := h.attendance.Record(r.Context(), reservationID, user.ID, decision); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) AttendanceStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.attendance == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	status, err := h.attendance.Status(reservationID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, attendanceStatusResponse{
		Confirmed: toParticipantDTOs(status.Confirmed),
		Declined:  toParticipantDTOs(status.Declined),
	})
}

func parseAttendanceDecision(value string) (booking.AttendanceDecision, bool) {
	switch strings.TrimSpace(value) {
	case string(booking.AttendanceConfirmed), "confirm":
		return booking.AttendanceConfirmed, true
	case string(booking.AttendanceDeclined), "decline":
		return booking.AttendanceDeclined, true
	default:
		return "", false
	}
}

type attendanceRequest struct {
	Decision string `json:"decision"`
}

type attendanceStatusResponse struct {
	Confirmed []participantDTO `json:"confirmed"`
	Declined  []participantDTO `json:"declined"`
}

type monthsResponse struct {
	Months []string `json:"months"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type reservationListResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type participantDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
}

type reservationDTO struct {
	ID            string            `json:"id"`
	Date          string            `json:"date"`
	TimeRange     string            `json:"time_range"`
	Room          string            `json:"room"`
	Title         string            `json:"title"`
	OrganizerID   string            `json:"organizer_id"`
	OrganizerName string            `json:"organizer_name"`
	Participants  []participantDTO  `json:"participants"`
	Status        string            `json:"status"`
	Attendance    map[string]string `json:"attendance,omitempty"`
}

func toReservationDTO(r booking.Reservation) reservationDTO {
	attendance := make(map[string]string, len(r.Attendance))
	for id, decision := range r.Attendance {
		attendance[id] = string(decision)
	}
	if len(attendance) == 0 {
		attendance = nil
	}
	return reservationDTO{
		ID:            r.ID,
		Date:          r.Date,
		TimeRange:     r.TimeRange,
		Room:          r.Room,
		Title:         r.Title,
		OrganizerID:   r.Organizer.ID,
		OrganizerName: r.Organizer.DisplayName,
		Participants:  toParticipantDTOs(r.Participants),
		Status:        string(r.Status),
		Attendance:    attendance,
	}
}

func toReservationDTOs(reservations []booking.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, toReservationDTO(r))
	}
	return out
}

func toParticipantDTOs(participants []booking.Participant) []participantDTO {
	if len(participants) == 0 {
		return nil
	}
	out := make([]participantDTO, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantDTO{ID: p.ID, DisplayName: p.DisplayName, Username: p.Username})
	}
	return out
}
