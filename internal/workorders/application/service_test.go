package application

import (
	"context"
	"log"
	"strings"
	"testing"
	"time"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
	tickets "helpdesk-cloud/internal/tickets/domain"
	workorders "helpdesk-cloud/internal/workorders/domain"
)

type stubWorkOrderStore struct {
	orders  map[string]*workorders.WorkOrder
	reports []*workorders.WorkReport
}

func newStubWorkOrderStore() *stubWorkOrderStore {
	return &stubWorkOrderStore{orders: map[string]*workorders.WorkOrder{}}
}

func (s *stubWorkOrderStore) Create(_ context.Context, order *workorders.WorkOrder) error {
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *stubWorkOrderStore) Get(_ context.Context, id string) (*workorders.WorkOrder, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (s *stubWorkOrderStore) List(_ context.Context, branchID, status string) ([]workorders.WorkOrder, error) {
	var result []workorders.WorkOrder
	for _, order := range s.orders {
		if branchID != "" && order.BranchID != branchID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

func (s *stubWorkOrderStore) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	order := s.orders[id]
	order.Status = status
	order.UpdatedAt = at
	return nil
}

func (s *stubWorkOrderStore) FileReport(_ context.Context, report *workorders.WorkReport) error {
	copied := *report
	s.reports = append(s.reports, &copied)
	order := s.orders[report.WorkOrderID]
	order.Status = workorders.StatusDone
	order.CompletedAt = &copied.FiledAt
	return nil
}

type stubTicketSource struct {
	tickets map[string]*tickets.Ticket
}

func (s *stubTicketSource) Get(_ context.Context, id string) (*tickets.Ticket, error) {
	return s.tickets[id], nil
}

type stubUserSource struct {
	users map[string]*masterdata.User
}

func (s *stubUserSource) Get(_ context.Context, id string) (*masterdata.User, error) {
	return s.users[id], nil
}

func newWorkOrderService(t *testing.T, store WorkOrderStore) *Service {
	t.Helper()
	ticketSource := &stubTicketSource{tickets: map[string]*tickets.Ticket{
		"tic-1": {ID: "tic-1", BranchID: "br-1", Title: "AC leaking", Status: tickets.StatusAssigned},
	}}
	users := &stubUserSource{users: map[string]*masterdata.User{
		"usr-1": {ID: "usr-1", Name: "Dewi", Role: "staff", Active: true},
	}}
	service, err := NewService(store, ticketSource, users, log.New(&strings.Builder{}, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestCreateInheritsBranchFromTicket(t *testing.T) {
	store := newStubWorkOrderStore()
	service := newWorkOrderService(t, store)

	order, err := service.Create(context.Background(), CreateRequest{
		TicketID:    "tic-1",
		AssignedTo:  "usr-1",
		Description: "Replace AC hose",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.BranchID != "br-1" {
		t.Fatalf("expected branch inherited from ticket, got %s", order.BranchID)
	}
	if order.Status != workorders.StatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
}

func TestCreateRejectsUnknownTicket(t *testing.T) {
	service := newWorkOrderService(t, newStubWorkOrderStore())
	_, err := service.Create(context.Background(), CreateRequest{TicketID: "tic-404", Description: "x"})
	if err == nil {
		t.Fatal("expected error for unknown ticket")
	}
}

func TestFileReportRequiresInProgress(t *testing.T) {
	store := newStubWorkOrderStore()
	service := newWorkOrderService(t, store)

	order, err := service.Create(context.Background(), CreateRequest{BranchID: "br-1", Description: "Fix pump"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	hours := 2.5
	if _, err := service.FileReport(context.Background(), order.ID, "usr-1", ReportRequest{Summary: "done", LaborHours: &hours}); err == nil {
		t.Fatal("expected filing on a pending order to be rejected")
	}

	if _, err := service.UpdateStatus(context.Background(), order.ID, workorders.StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}
	report, err := service.FileReport(context.Background(), order.ID, "usr-1", ReportRequest{
		Summary:       "Replaced impeller",
		MaterialsUsed: "impeller kit",
		LaborHours:    &hours,
	})
	if err != nil {
		t.Fatalf("file report: %v", err)
	}
	if report.LaborHours.String() != "2.5" {
		t.Fatalf("expected labor hours 2.5, got %s", report.LaborHours.String())
	}

	completed, err := service.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if completed.Status != workorders.StatusDone {
		t.Fatalf("expected done after report, got %s", completed.Status)
	}
}

func TestFileReportRejectsNegativeHours(t *testing.T) {
	store := newStubWorkOrderStore()
	service := newWorkOrderService(t, store)

	order, err := service.Create(context.Background(), CreateRequest{BranchID: "br-1", Description: "Fix pump"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.UpdateStatus(context.Background(), order.ID, workorders.StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}
	hours := -1.0
	if _, err := service.FileReport(context.Background(), order.ID, "usr-1", ReportRequest{Summary: "x", LaborHours: &hours}); err == nil {
		t.Fatal("expected negative labor hours to be rejected")
	}
}
