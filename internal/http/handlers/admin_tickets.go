package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

// AdminTickets serves the concierge operations views over the ticket store.
type AdminTickets struct {
	tickets *ticket.Store
	logger  *logging.Logger
}

// NewAdminTickets creates the admin ticket handler.
func NewAdminTickets(tickets *ticket.Store, logger *logging.Logger) *AdminTickets {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminTickets{tickets: tickets, logger: logger}
}

// HandleGet serves GET /admin/tickets/{id}.
func (h *AdminTickets) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := h.tickets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		h.logger.Error("ticket lookup failed", "ticket_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "ticket lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleListByMember serves GET /admin/members/{memberID}/tickets.
// An unknown member yields an empty list, not a 404.
func (h *AdminTickets) HandleListByMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.tickets.ListByMember(r.Context(), memberID, limit)
	if err != nil {
		h.logger.Error("ticket list failed", "member_id", memberID, "error", err)
		writeError(w, http.StatusInternalServerError, "ticket list failed")
		return
	}
	if list == nil {
		list = []*ticket.ServiceTicket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member_id": memberID,
		"tickets":   list,
	})
}

// HandleUpdateStatus serves PATCH /admin/tickets/{id}/status. Backwards
// transitions are rejected with 409.
func (h *AdminTickets) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status ticket.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tickets.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status")
		case errors.Is(err, ticket.ErrNotFound):
			writeError(w, http.StatusNotFound, "ticket not found")
		case errors.Is(err, ticket.ErrStatusRegression):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("status update failed", "ticket_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "status update failed")
		}
		return
	}

	h.logger.Info("ticket status updated", "ticket_id", id, "status", t.Status)
	writeJSON(w, http.StatusOK, t)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
