package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"helpdesk-cloud/internal/audit"
	"helpdesk-cloud/internal/auth"
	"helpdesk-cloud/internal/observability/metrics"
	reportapp "helpdesk-cloud/internal/reports/application"
)

const queryDateLayout = "2006-01-02"

// ReportHandler serves the usage report as JSON and as PDF/XLSX
// exports. All three paths share one service call.
type ReportHandler struct {
	service     *reportapp.UsageReportService
	auditLogger audit.Logger
}

// NewReportHandler constructs a handler.
func NewReportHandler(service *reportapp.UsageReportService, auditLogger audit.Logger) (*ReportHandler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &ReportHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes report and export requests.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/reports/daily-usage":
		h.handleJSON(w, r)
	case "/api/v1/exports/daily-usage.xlsx":
		h.handleExport(w, r, "xlsx")
	case "/api/v1/exports/daily-usage.pdf":
		h.handleExport(w, r, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ReportHandler) handleJSON(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.service.Generate(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"rows": rows})
}

func (h *ReportHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, result, time.Since(start))
	}()

	query, err := parseQuery(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Exports always render oldest-first regardless of display order.
	query.NewestFirst = false
	rows, err := h.service.Generate(r.Context(), query)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meta := ExportMeta{
		BranchName: query.BranchID,
		Period:     formatPeriod(query.From, query.To),
		Category:   query.Category,
	}
	if len(rows) > 0 && rows[0].Branch != "-" {
		meta.BranchName = rows[0].Branch
	}

	var data []byte
	switch format {
	case "xlsx":
		data, err = BuildUsageXLSX(meta, rows)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	case "pdf":
		data, err = BuildUsagePDF(meta, rows)
		w.Header().Set("Content-Type", "application/pdf")
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, query.BranchID, format)
}

func parseQuery(r *http.Request) (reportapp.ReportQuery, error) {
	values := r.URL.Query()
	query := reportapp.ReportQuery{
		BranchID:    values.Get("branch_id"),
		UserID:      values.Get("user_id"),
		Category:    values.Get("category"),
		NewestFirst: values.Get("order") == "desc",
	}
	if query.BranchID == "" {
		return query, errors.New("branch_id required")
	}
	if raw := values.Get("from"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return query, errors.New("from must be YYYY-MM-DD")
		}
		from := parsed.UTC()
		query.From = &from
	}
	if raw := values.Get("to"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return query, errors.New("to must be YYYY-MM-DD")
		}
		// Inclusive end date becomes an exclusive bound at midnight.
		to := parsed.UTC().AddDate(0, 0, 1)
		query.To = &to
	}
	return query, nil
}

func formatPeriod(from, to *time.Time) string {
	format := func(value *time.Time, adjust int) string {
		if value == nil {
			return "..."
		}
		return value.AddDate(0, 0, adjust).Format(queryDateLayout)
	}
	return format(from, 0) + " to " + format(to, -1)
}

func (h *ReportHandler) logAudit(r *http.Request, branchID, format string) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{"format": format})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "daily_usage_report",
		BranchID:     branchID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
