package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
	"helpdesk-cloud/internal/notify"
	"helpdesk-cloud/internal/observability/metrics"
	tickets "helpdesk-cloud/internal/tickets/domain"
)

// TicketStore persists tickets.
type TicketStore interface {
	Create(ctx context.Context, ticket *tickets.Ticket) error
	Get(ctx context.Context, id string) (*tickets.Ticket, error)
	List(ctx context.Context, branchID, status string) ([]tickets.Ticket, error)
	Assign(ctx context.Context, id, assigneeID string, at time.Time) error
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
}

// UserSource resolves staff accounts for assignment.
type UserSource interface {
	Get(ctx context.Context, id string) (*masterdata.User, error)
}

// BranchSource resolves branches for validation.
type BranchSource interface {
	Get(ctx context.Context, id string) (*masterdata.Branch, error)
}

// CreateRequest is the payload for opening a ticket.
type CreateRequest struct {
	BranchID    string `json:"branch_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Service drives the ticket lifecycle.
type Service struct {
	store    TicketStore
	users    UserSource
	branches BranchSource
	channel  notify.Channel
	logger   *log.Logger
}

// NewService constructs the ticket service. The notification channel may be
// nil when no gateway is configured.
func NewService(store TicketStore, users UserSource, branches BranchSource, channel notify.Channel, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("ticket service: nil store")
	}
	if users == nil {
		return nil, errors.New("ticket service: nil user source")
	}
	if branches == nil {
		return nil, errors.New("ticket service: nil branch source")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, users: users, branches: branches, channel: channel, logger: logger}, nil
}

// Create opens a new ticket in the open status.
func (s *Service) Create(ctx context.Context, reportedBy string, req CreateRequest) (*tickets.Ticket, error) {
	if req.BranchID == "" {
		return nil, errors.New("ticket service: missing branch id")
	}
	if req.Title == "" {
		return nil, errors.New("ticket service: missing title")
	}
	branch, err := s.branches.Get(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, errors.New("ticket service: unknown branch")
	}

	now := time.Now().UTC()
	ticket := &tickets.Ticket{
		ID:          uuid.NewString(),
		BranchID:    req.BranchID,
		BranchName:  branch.Name,
		ReportedBy:  reportedBy,
		Title:       req.Title,
		Description: req.Description,
		Priority:    tickets.NormalizePriority(req.Priority),
		Status:      tickets.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, ticket); err != nil {
		return nil, err
	}
	metrics.IncTicketEvent("created")
	return ticket, nil
}

// Assign hands the ticket to an active staff member and notifies them.
func (s *Service) Assign(ctx context.Context, ticketID, assigneeID string) (*tickets.Ticket, error) {
	if ticketID == "" || assigneeID == "" {
		return nil, errors.New("ticket service: missing id")
	}
	ticket, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, errors.New("ticket service: ticket not found")
	}
	if !tickets.ValidTransition(ticket.Status, tickets.StatusAssigned) && ticket.Status != tickets.StatusAssigned {
		return nil, errors.New("ticket service: ticket cannot be assigned in status " + ticket.Status)
	}
	assignee, err := s.users.Get(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if assignee == nil || !assignee.Active {
		return nil, errors.New("ticket service: unknown or inactive assignee")
	}

	now := time.Now().UTC()
	if err := s.store.Assign(ctx, ticketID, assigneeID, now); err != nil {
		return nil, err
	}
	metrics.IncTicketEvent("assigned")

	ticket.AssignedTo = assigneeID
	ticket.AssignedName = assignee.Name
	ticket.Status = tickets.StatusAssigned
	ticket.AssignedAt = &now
	ticket.UpdatedAt = now

	s.notifyAssignee(ctx, ticket, assignee)
	return ticket, nil
}

// UpdateStatus transitions the ticket along the lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, ticketID, status string) (*tickets.Ticket, error) {
	if ticketID == "" {
		return nil, errors.New("ticket service: missing id")
	}
	if !tickets.ValidStatus(status) {
		return nil, errors.New("ticket service: unknown status " + status)
	}
	ticket, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, errors.New("ticket service: ticket not found")
	}
	if !tickets.ValidTransition(ticket.Status, status) {
		return nil, errors.New("ticket service: invalid transition " + ticket.Status + " -> " + status)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateStatus(ctx, ticketID, status, now); err != nil {
		return nil, err
	}
	metrics.IncTicketEvent(status)

	ticket.Status = status
	ticket.UpdatedAt = now
	switch status {
	case tickets.StatusResolved:
		ticket.ResolvedAt = &now
	case tickets.StatusClosed:
		ticket.ClosedAt = &now
	}
	return ticket, nil
}

// Get fetches one ticket.
func (s *Service) Get(ctx context.Context, id string) (*tickets.Ticket, error) {
	if id == "" {
		return nil, errors.New("ticket service: missing id")
	}
	return s.store.Get(ctx, id)
}

// List returns tickets filtered by branch and status.
func (s *Service) List(ctx context.Context, branchID, status string) ([]tickets.Ticket, error) {
	if status != "" && !tickets.ValidStatus(status) {
		return nil, errors.New("ticket service: unknown status " + status)
	}
	return s.store.List(ctx, branchID, status)
}

// notifyAssignee is best effort: delivery failures are logged, never
// returned to the caller.
func (s *Service) notifyAssignee(ctx context.Context, ticket *tickets.Ticket, assignee *masterdata.User) {
	if s.channel == nil {
		return
	}
	if assignee.Phone == "" {
		s.logger.Printf("ticket %s: assignee %s has no phone, skipping notification", ticket.ID, assignee.ID)
		return
	}
	message := notify.TicketAssignedMessage(ticket.ID, ticket.Title, ticket.Priority, ticket.BranchName)
	result := metrics.ResultSuccess
	if err := s.channel.Send(ctx, assignee.Phone, message); err != nil {
		result = metrics.ResultError
		s.logger.Printf("ticket %s: assignment notification failed: %v", ticket.ID, err)
	}
	metrics.IncNotify("ticket_assignment", result)
}
