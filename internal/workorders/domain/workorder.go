package workorders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Work order statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// WorkOrder schedules maintenance work, usually spawned from a ticket.
type WorkOrder struct {
	ID           string
	TicketID     string
	BranchID     string
	BranchName   string
	AssignedTo   string
	AssignedName string
	Description  string
	Status       string
	ScheduledFor *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Report       *WorkReport
}

// WorkReport documents the completed work.
type WorkReport struct {
	ID            string
	WorkOrderID   string
	FiledBy       string
	Summary       string
	MaterialsUsed string
	PhotoURL      string
	LaborHours    decimal.Decimal
	FiledAt       time.Time
}

// ValidStatus reports whether the status is a known work order status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// ValidTransition reports whether a work order may move between statuses.
// Done and cancelled are terminal.
func ValidTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) || from == to {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusDone || to == StatusCancelled
	default:
		return false
	}
}
