package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"helpdesk-cloud/internal/audit"
	"helpdesk-cloud/internal/auth"
	masterdata "helpdesk-cloud/internal/masterdata/domain"
	masterdatarepo "helpdesk-cloud/internal/masterdata/infrastructure/postgres"
)

// BranchHandler provides branch admin endpoints on /api/v1/branches.
type BranchHandler struct {
	repo        *masterdatarepo.BranchRepository
	auditLogger audit.Logger
}

// NewBranchHandler constructs a handler.
func NewBranchHandler(repo *masterdatarepo.BranchRepository, auditLogger audit.Logger) (*BranchHandler, error) {
	if repo == nil {
		return nil, errors.New("branch handler: nil repository")
	}
	return &BranchHandler{repo: repo, auditLogger: auditLogger}, nil
}

func (h *BranchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		branches, err := h.repo.ListActive(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
	case http.MethodPost:
		var req struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Phone   string `json:"phone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}
		branch := &masterdata.Branch{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Address:   req.Address,
			Phone:     req.Phone,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.repo.Create(r.Context(), branch); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, branch)
		logAudit(h.auditLogger, r, "branch.create", "branch", branch.ID, branch.ID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// MeterHandler provides electricity meter admin endpoints on /api/v1/meters.
type MeterHandler struct {
	repo        *masterdatarepo.MeterRepository
	auditLogger audit.Logger
}

// NewMeterHandler constructs a handler.
func NewMeterHandler(repo *masterdatarepo.MeterRepository, auditLogger audit.Logger) (*MeterHandler, error) {
	if repo == nil {
		return nil, errors.New("meter handler: nil repository")
	}
	return &MeterHandler{repo: repo, auditLogger: auditLogger}, nil
}

func (h *MeterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		branchID := r.URL.Query().Get("branch_id")
		if branchID == "" {
			http.Error(w, "missing branch_id", http.StatusBadRequest)
			return
		}
		meters, err := h.repo.ListActiveByBranch(r.Context(), branchID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"meters": meters})
	case http.MethodPost:
		var req struct {
			BranchID    string `json:"branch_id"`
			Name        string `json:"name"`
			MeterNumber string `json:"meter_number"`
			Location    string `json:"location"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.BranchID == "" || req.Name == "" {
			http.Error(w, "missing branch_id or name", http.StatusBadRequest)
			return
		}
		meter := &masterdata.ElectricityMeter{
			ID:          uuid.NewString(),
			BranchID:    req.BranchID,
			Name:        req.Name,
			MeterNumber: req.MeterNumber,
			Location:    req.Location,
			Active:      true,
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.repo.Create(r.Context(), meter); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, meter)
		logAudit(h.auditLogger, r, "meter.create", "electricity_meter", meter.ID, meter.BranchID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func logAudit(logger audit.Logger, r *http.Request, action, resourceType, resourceID, branchID string) {
	if logger == nil {
		return
	}
	_ = logger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BranchID:     branchID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
