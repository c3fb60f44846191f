package models

import "time"

// Collection is a named, ordered set of item ids belonging to one user.
type Collection struct {
	ID        string
	OwnerID   string
	Name      string
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contains reports whether itemID is a member.
func (c Collection) Contains(itemID string) bool {
	for _, id := range c.MemberIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
