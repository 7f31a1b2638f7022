package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"helpdesk-cloud/internal/audit"
	"helpdesk-cloud/internal/auth"
	workorderapp "helpdesk-cloud/internal/workorders/application"
)

// Handler provides work order HTTP endpoints.
//
// Routes:
//
//	POST /api/v1/work-orders                create
//	GET  /api/v1/work-orders                list (branch_id, status filters)
//	GET  /api/v1/work-orders/{id}           fetch
//	POST /api/v1/work-orders/{id}/status    transition status
//	POST /api/v1/work-orders/{id}/report    file completion report
type Handler struct {
	service     *workorderapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *workorderapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("work order handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches work order routes under /api/v1/work-orders.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/work-orders")
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
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.handleStatus(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "report" && r.Method == http.MethodPost:
		h.handleReport(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req workorderapp.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	order, err := h.service.Create(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, order)
	h.logAudit(r, order.BranchID, order.ID, "work_order.create", map[string]any{
		"ticket_id": order.TicketID,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	list, err := h.service.List(r.Context(), values.Get("branch_id"), values.Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"work_orders": list})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if order == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, order)
	h.logAudit(r, order.BranchID, order.ID, "work_order.status", map[string]any{
		"status": req.Status,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	var req workorderapp.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	filedBy := auth.SubjectFromContext(r.Context())
	report, err := h.service.FileReport(r.Context(), id, filedBy, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, report)
	h.logAudit(r, "", id, "work_order.report", map[string]any{
		"report_id": report.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logAudit(r *http.Request, branchID, orderID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "work_order",
		ResourceID:   orderID,
		BranchID:     branchID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
