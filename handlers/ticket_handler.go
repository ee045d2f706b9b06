package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adilhn/supportflow/db"
)

// TicketHandler exposes the support-ticket store to the support team's
// tooling. Tickets are created by the escalation handler, never over HTTP.
type TicketHandler struct {
	Store  *db.Store
	Logger *slog.Logger
}

func NewTicketHandler(store *db.Store, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{Store: store, Logger: logger}
}

func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	tickets, err := h.Store.ListTickets(r.Context(), status)
	if err != nil {
		h.Logger.Error("Failed to list tickets", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to list tickets")
		return
	}
	if tickets == nil {
		tickets = []db.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := strings.TrimSpace(mux.Vars(r)["ticket_id"])

	ticket, err := h.Store.GetTicket(r.Context(), ticketID)
	if err == db.ErrNotFound {
		writeJSONError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	if err != nil {
		h.Logger.Error("Failed to read ticket", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to read ticket")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	ticketID := strings.TrimSpace(mux.Vars(r)["ticket_id"])

	var req struct {
		Status          string  `json:"status"`
		AssignedTo      *string `json:"assigned_to,omitempty"`
		ResolutionNotes *string `json:"resolution_notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		writeJSONError(w, http.StatusBadRequest, "status is required")
		return
	}

	ticket, err := h.Store.UpdateTicketStatus(r.Context(), ticketID, req.Status, req.AssignedTo, req.ResolutionNotes)
	if err == db.ErrNotFound {
		writeJSONError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	if err != nil {
		h.Logger.Warn("Failed to update ticket",
			slog.String("ticket_id", ticketID), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}
