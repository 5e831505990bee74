package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/logging"
)

var (
	errBadRequestBody        = errors.New("Formato de requisição inválido.")
	errInvalidReservationID  = errors.New("Identificador de agendamento inválido.")
	errMissingUserIdentity   = errors.New("Identifique o usuário da requisição.")
	errInvalidAttendanceVote = errors.New("Resposta de presença inválida.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	kind := booking.ErrorKind(err)
	switch {
	case errors.Is(err, booking.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: kind,
			Message:   "Esse horário não está mais disponível para a sala escolhida. Inicie o agendamento novamente.",
		})
	case errors.Is(err, booking.ErrNoRoomAvailable):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: kind,
			Message:   "Não há salas disponíveis para a data e o horário informados.",
		})
	case errors.Is(err, booking.ErrNoActiveSession):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: kind,
			Message:   "Não há um agendamento em andamento. Inicie novamente.",
		})
	case errors.Is(err, booking.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Agendamento não encontrado."})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: kind,
			Message:   "Este agendamento já foi cancelado.",
		})
	case errors.Is(err, booking.ErrAttendanceRecorded):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: kind,
			Message:   "Sua resposta de presença já foi registrada.",
		})
	case errors.Is(err, booking.ErrNotParticipant):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: kind,
			Message:   "Você não foi convidado para este agendamento.",
		})
	case errors.Is(err, booking.ErrPermission):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: kind,
			Message:   "Você não tem permissão para executar esta operação.",
		})
	case errors.Is(err, booking.ErrNoCursor):
		r.writeJSON(ctx, w, http.StatusGone, errorResponse{
			ErrorCode: kind,
			Message:   "A navegação expirou. Abra o calendário novamente.",
		})
	default:
		var vErr *booking.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Os dados informados são inválidos.",
				Errors:  details,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocorreu um erro interno no servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return logging.Or(ctx, r.logger)
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requisição inválida."
	case http.StatusUnauthorized:
		return "Identificação do usuário é obrigatória."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta operação."
	case http.StatusNotFound:
		return "Recurso não encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual."
	case http.StatusUnprocessableEntity:
		return "Os dados informados são inválidos."
	default:
		return "Ocorreu um erro interno no servidor."
	}
}

func localizeValidationErrors(vErr *booking.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "invalid or past date":
		return "Data inválida ou anterior a hoje. Use o formato DD/MM/AAAA."
	case "invalid time range":
		return "Horário inválido. Use o formato HH:MM-HH:MM com término após o início."
	case "room was not offered for this slot":
		return "A sala escolhida não está entre as salas disponíveis para este horário."
	case "title is required":
		return "O título é obrigatório."
	case "page must not be negative":
		return "Página de seleção inválida."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
