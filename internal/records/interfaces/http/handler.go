package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"helpdesk-cloud/internal/audit"
	"helpdesk-cloud/internal/auth"
	recordapp "helpdesk-cloud/internal/records/application"
)

const dateLayout = "2006-01-02"

// Handler provides daily record HTTP endpoints.
type Handler struct {
	service     *recordapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *recordapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("record handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/daily-records.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req recordapp.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	submittedBy := auth.SubjectFromContext(r.Context())
	record, err := h.service.Submit(r.Context(), req, submittedBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"record_id":  record.ID,
		"branch_id":  record.BranchID,
		"created_at": record.CreatedAt,
	})
	h.logAudit(r, record.BranchID, record.ID, "daily_record.submit", map[string]any{
		"utility_readings":     len(record.UtilityReadings),
		"electricity_readings": len(record.ElectricityReadings),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	branchID := values.Get("branch_id")
	userID := values.Get("user_id")
	var from, to *time.Time
	if raw := values.Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		value := parsed.UTC()
		from = &value
	}
	if raw := values.Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		value := parsed.UTC().AddDate(0, 0, 1)
		to = &value
	}
	list, err := h.service.List(r.Context(), branchID, userID, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"records": list})
}

func (h *Handler) logAudit(r *http.Request, branchID, recordID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "daily_record",
		ResourceID:   recordID,
		BranchID:     branchID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
