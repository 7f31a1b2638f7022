package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
	"helpdesk-cloud/internal/observability/metrics"
	tickets "helpdesk-cloud/internal/tickets/domain"
	workorders "helpdesk-cloud/internal/workorders/domain"
)

// WorkOrderStore persists work orders.
type WorkOrderStore interface {
	Create(ctx context.Context, order *workorders.WorkOrder) error
	Get(ctx context.Context, id string) (*workorders.WorkOrder, error)
	List(ctx context.Context, branchID, status string) ([]workorders.WorkOrder, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	FileReport(ctx context.Context, report *workorders.WorkReport) error
}

// TicketSource resolves tickets a work order is spawned from.
type TicketSource interface {
	Get(ctx context.Context, id string) (*tickets.Ticket, error)
}

// UserSource resolves staff accounts for assignment.
type UserSource interface {
	Get(ctx context.Context, id string) (*masterdata.User, error)
}

// CreateRequest is the payload for scheduling a work order.
type CreateRequest struct {
	TicketID     string     `json:"ticket_id"`
	BranchID     string     `json:"branch_id"`
	AssignedTo   string     `json:"assigned_to"`
	Description  string     `json:"description"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// ReportRequest is the payload for filing a work report.
type ReportRequest struct {
	Summary       string   `json:"summary"`
	MaterialsUsed string   `json:"materials_used"`
	PhotoURL      string   `json:"photo_url"`
	LaborHours    *float64 `json:"labor_hours"`
}

// Service drives the work order lifecycle.
type Service struct {
	store   WorkOrderStore
	tickets TicketSource
	users   UserSource
	logger  *log.Logger
}

// NewService constructs the work order service.
func NewService(store WorkOrderStore, ticketSource TicketSource, users UserSource, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("work order service: nil store")
	}
	if ticketSource == nil {
		return nil, errors.New("work order service: nil ticket source")
	}
	if users == nil {
		return nil, errors.New("work order service: nil user source")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, tickets: ticketSource, users: users, logger: logger}, nil
}

// Create schedules a work order. When spawned from a ticket the branch is
// inherited from it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*workorders.WorkOrder, error) {
	if req.Description == "" {
		return nil, errors.New("work order service: missing description")
	}

	branchID := req.BranchID
	if req.TicketID != "" {
		ticket, err := s.tickets.Get(ctx, req.TicketID)
		if err != nil {
			return nil, err
		}
		if ticket == nil {
			return nil, errors.New("work order service: unknown ticket")
		}
		branchID = ticket.BranchID
	}
	if branchID == "" {
		return nil, errors.New("work order service: missing branch id")
	}

	if req.AssignedTo != "" {
		assignee, err := s.users.Get(ctx, req.AssignedTo)
		if err != nil {
			return nil, err
		}
		if assignee == nil || !assignee.Active {
			return nil, errors.New("work order service: unknown or inactive assignee")
		}
	}

	now := time.Now().UTC()
	order := &workorders.WorkOrder{
		ID:           uuid.NewString(),
		TicketID:     req.TicketID,
		BranchID:     branchID,
		AssignedTo:   req.AssignedTo,
		Description:  req.Description,
		Status:       workorders.StatusPending,
		ScheduledFor: req.ScheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}
	metrics.IncWorkOrderEvent("created")
	return order, nil
}

// UpdateStatus transitions a work order.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*workorders.WorkOrder, error) {
	if id == "" {
		return nil, errors.New("work order service: missing id")
	}
	if !workorders.ValidStatus(status) {
		return nil, errors.New("work order service: unknown status " + status)
	}
	order, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("work order service: work order not found")
	}
	if !workorders.ValidTransition(order.Status, status) {
		return nil, errors.New("work order service: invalid transition " + order.Status + " -> " + status)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	metrics.IncWorkOrderEvent(status)

	order.Status = status
	order.UpdatedAt = now
	switch status {
	case workorders.StatusInProgress:
		order.StartedAt = &now
	case workorders.StatusDone:
		order.CompletedAt = &now
	}
	return order, nil
}

// FileReport stores the work report and completes the order. Only orders
// already in progress can be completed.
func (s *Service) FileReport(ctx context.Context, workOrderID, filedBy string, req ReportRequest) (*workorders.WorkReport, error) {
	if workOrderID == "" {
		return nil, errors.New("work order service: missing id")
	}
	if req.Summary == "" {
		return nil, errors.New("work order service: missing summary")
	}
	order, err := s.store.Get(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("work order service: work order not found")
	}
	if !workorders.ValidTransition(order.Status, workorders.StatusDone) {
		return nil, errors.New("work order service: cannot complete order in status " + order.Status)
	}

	laborHours := decimal.Zero
	if req.LaborHours != nil {
		if *req.LaborHours < 0 {
			return nil, errors.New("work order service: negative labor hours")
		}
		laborHours = decimal.NewFromFloat(*req.LaborHours)
	}

	report := &workorders.WorkReport{
		ID:            uuid.NewString(),
		WorkOrderID:   workOrderID,
		FiledBy:       filedBy,
		Summary:       req.Summary,
		MaterialsUsed: req.MaterialsUsed,
		PhotoURL:      req.PhotoURL,
		LaborHours:    laborHours.Round(2),
		FiledAt:       time.Now().UTC(),
	}
	if err := s.store.FileReport(ctx, report); err != nil {
		return nil, err
	}
	metrics.IncWorkOrderEvent("report_filed")
	return report, nil
}

// Get fetches one work order.
func (s *Service) Get(ctx context.Context, id string) (*workorders.WorkOrder, error) {
	if id == "" {
		return nil, errors.New("work order service: missing id")
	}
	return s.store.Get(ctx, id)
}

// List returns work orders filtered by branch and status.
func (s *Service) List(ctx context.Context, branchID, status string) ([]workorders.WorkOrder, error) {
	if status != "" && !workorders.ValidStatus(status) {
		return nil, errors.New("work order service: unknown status " + status)
	}
	return s.store.List(ctx, branchID, status)
}
