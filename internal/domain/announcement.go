package domain

import "time"

// AnnouncementTTL is how long an announcement stays visible and joinable.
const AnnouncementTTL = 24 * time.Hour

// Bounds for the number of missing players on a new announcement.
const (
	MinSlots = 1
	MaxSlots = 10
)

// Announcement is an open-slot pickup-game notice ("falta uno"):
// a captain at some venue still needs N players.
type Announcement struct {
	ID      string
	VenueID string
	// SlotsRemaining counts the players still missing. Never negative.
	SlotsRemaining int
	Contact        string
	// Attendees holds "Name (contact)" entries in join order. Append-only.
	Attendees []string
	CreatedAt time.Time
}

// VisibilityCutoff returns the oldest creation time still visible at now.
func VisibilityCutoff(now time.Time) time.Time {
	return now.Add(-AnnouncementTTL)
}

// IsActive reports whether the announcement is inside its 24h visibility
// window. Expiry is purely view-time: expired rows are kept, not deleted.
func (a Announcement) IsActive(now time.Time) bool {
	return a.CreatedAt.After(VisibilityCutoff(now))
}

// IsFull reports whether every slot has been taken. A full announcement
// stays visible until it expires but cannot be joined.
func (a Announcement) IsFull() bool {
	return a.SlotsRemaining == 0
}
