package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"helpdesk-cloud/internal/audit"
	"helpdesk-cloud/internal/auth"
	ticketapp "helpdesk-cloud/internal/tickets/application"
)

// Handler provides ticket HTTP endpoints.
//
// Routes:
//
//	POST /api/v1/tickets                    create
//	GET  /api/v1/tickets                    list (branch_id, status filters)
//	GET  /api/v1/tickets/{id}               fetch
//	POST /api/v1/tickets/{id}/assign        assign to a staff member
//	POST /api/v1/tickets/{id}/status        transition status
type Handler struct {
	service     *ticketapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *ticketapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("ticket handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches ticket routes under /api/v1/tickets.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/tickets")
	rest = strings.Trim(rest, "/")

	if rest == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGet(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "assign" && r.Method == http.MethodPost:
		h.handleAssign(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.handleStatus(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ticketapp.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	reportedBy := auth.SubjectFromContext(r.Context())
	ticket, err := h.service.Create(r.Context(), reportedBy, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
	h.logAudit(r, ticket.BranchID, ticket.ID, "ticket.create", map[string]any{
		"title":    ticket.Title,
		"priority": ticket.Priority,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	list, err := h.service.List(r.Context(), values.Get("branch_id"), values.Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": list})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	ticket, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ticket == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		AssigneeID string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ticket, err := h.service.Assign(r.Context(), id, req.AssigneeID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
	h.logAudit(r, ticket.BranchID, ticket.ID, "ticket.assign", map[string]any{
		"assignee_id": req.AssigneeID,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ticket, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
	h.logAudit(r, ticket.BranchID, ticket.ID, "ticket.status", map[string]any{
		"status": req.Status,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logAudit(r *http.Request, branchID, ticketID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "ticket",
		ResourceID:   ticketID,
		BranchID:     branchID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
