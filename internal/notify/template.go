package notify

import (
	"fmt"
	"strings"
	"time"
)

// TicketAssignedMessage formats the assignment notification for a staff
// member.
func TicketAssignedMessage(ticketID, title, priority, branchName string) string {
	var b strings.Builder
	b.WriteString("[Helpdesk] New assignment\n")
	fmt.Fprintf(&b, "Ticket: %s\n", ticketID)
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	if priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", priority)
	}
	if branchName != "" {
		fmt.Fprintf(&b, "Branch: %s\n", branchName)
	}
	return strings.TrimSpace(b.String())
}

// RecordReminderMessage formats the missing-daily-record reminder.
func RecordReminderMessage(branchName string, day time.Time) string {
	var b strings.Builder
	b.WriteString("[Helpdesk] Daily record reminder\n")
	if branchName != "" {
		fmt.Fprintf(&b, "Branch: %s\n", branchName)
	}
	fmt.Fprintf(&b, "No meter readings submitted for %s yet.\n", day.Format("02-01-2006"))
	b.WriteString("Please submit today's gas, water and electricity readings.")
	return strings.TrimSpace(b.String())
}
