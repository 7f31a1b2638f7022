package tickets

import "time"

// Ticket statuses.
const (
	StatusOpen       = "open"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Ticket is a reported facility issue at a branch.
type Ticket struct {
	ID           string
	BranchID     string
	BranchName   string
	ReportedBy   string
	AssignedTo   string
	AssignedName string
	Title        string
	Description  string
	Priority     string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AssignedAt   *time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}

// NormalizePriority maps free-form input onto a known priority, defaulting
// to normal.
func NormalizePriority(priority string) string {
	switch priority {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return priority
	default:
		return PriorityNormal
	}
}

// ValidStatus reports whether the status is a known ticket status.
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

// ValidTransition reports whether a ticket may move between two statuses.
// Closed is terminal; resolved tickets may be reopened into in_progress or
// closed for good.
func ValidTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) || from == to {
		return false
	}
	switch from {
	case StatusOpen:
		return to == StatusAssigned || to == StatusInProgress || to == StatusClosed
	case StatusAssigned:
		return to == StatusInProgress || to == StatusResolved || to == StatusClosed
	case StatusInProgress:
		return to == StatusResolved || to == StatusClosed
	case StatusResolved:
		return to == StatusInProgress || to == StatusClosed
	case StatusClosed:
		return false
	default:
		return false
	}
}
