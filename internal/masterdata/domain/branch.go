package masterdata

import "time"

// Branch represents a serviced site.
type Branch struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	Active    bool
	CreatedAt time.Time
}
