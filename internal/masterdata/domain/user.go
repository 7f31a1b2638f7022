package masterdata

import "time"

// User represents a staff member or viewer account.
type User struct {
	ID        string
	Name      string
	Phone     string
	Role      string
	BranchID  string
	Active    bool
	CreatedAt time.Time
}
