package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

type bookingService interface {
	Start(ctx context.Context, user booking.UserRef, rawDate, rawTime string) (booking.StartOutcome, error)
	ChooseRoom(ctx context.Context, userID, room string) error
	SetTitle(ctx context.Context, userID, title string) ([]booking.Member, error)
	SelectParticipants(ctx context.Context, userID string, page int, memberIDs []string) error
	Finish(ctx context.Context, userID string, withParticipants bool) (booking.Reservation, error)
}

// BookingHandler drives the step-by-step booking flow. Each step acts on the
// live session of the requesting user; the flow state itself lives in the
// booking package.
type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req startBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	outcome, err := h.service.Start(r.Context(), user, req.Date, req.Time)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, startBookingResponse{
		Date:         outcome.Date,
		TimeRange:    outcome.TimeRange,
		OfferedRooms: outcome.OfferedRooms,
	})
}

func (h *BookingHandler) ChooseRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req chooseRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	if err := h.service.ChooseRoom(r.Context(), user.ID, strings.TrimSpace(req.Room)); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req setTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	candidates, err := h.service.SetTitle(r.Context(), user.ID, req.Title)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, setTitleResponse{
		Candidates: toMemberDTOs(candidates),
	})
}

func (h *BookingHandler) SelectParticipants(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req selectParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	if err := h.service.SelectParticipants(r.Context(), user.ID, req.Page, req.MemberIDs); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) Finish(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req finishBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, _ := ActingUserFromContext(r.Context())

	reservation, err := h.service.Finish(r.Context(), user.ID, req.WithParticipants)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{
		Reservation: toReservationDTO(reservation),
	})
}

type startBookingRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type startBookingResponse struct {
	Date         string   `json:"date"`
	TimeRange    string   `json:"time_range"`
	OfferedRooms []string `json:"offered_rooms"`
}

type chooseRoomRequest struct {
	Room string `json:"room"`
}

type setTitleRequest struct {
	Title string `json:"title"`
}

type setTitleResponse struct {
	Candidates []memberDTO `json:"candidates"`
}

type selectParticipantsRequest struct {
	Page      int      `json:"page"`
	MemberIDs []string `json:"member_ids"`
}

type finishBookingRequest struct {
	WithParticipants bool `json:"with_participants"`
}

type memberDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
}

func toMemberDTOs(members []booking.Member) []memberDTO {
	if len(members) == 0 {
		return nil
	}
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{ID: m.ID, DisplayName: m.DisplayName, Username: m.Username})
	}
	return out
}
