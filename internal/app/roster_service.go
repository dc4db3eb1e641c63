package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/RigobertoCast/donde-jugar-chile/internal/domain"
)

type AnnouncementRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateAnnouncement(ctx context.Context, a domain.Announcement) error
	GetAnnouncementForUpdate(ctx context.Context, id string) (domain.Announcement, error)
	ApplyJoin(ctx context.Context, id, entry string, cutoff time.Time) (domain.Announcement, error)
	ListActiveSince(ctx context.Context, cutoff time.Time) ([]domain.Announcement, error)
}

// VenueReader is the read-only slice of the venue directory the roster
// needs: existence checks at creation and name/sport decoration at listing.
type VenueReader interface {
	GetVenue(ctx context.Context, id string) (domain.Venue, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)
}

// RosterService owns the announcement lifecycle: create, list the active
// window, and apply join requests to the slot counter and attendee roster.
type RosterService struct {
	repo   AnnouncementRepository
	venues VenueReader
	clock  clockwork.Clock
}

func NewRosterService(repo AnnouncementRepository, venues VenueReader, clk clockwork.Clock) *RosterService {
	return &RosterService{
		repo:   repo,
		venues: venues,
		clock:  clk,
	}
}

type CreateAnnouncementInput struct {
	VenueID string
	Slots   int
	Contact string
}

func (s *RosterService) CreateAnnouncement(ctx context.Context, in CreateAnnouncementInput) (domain.Announcement, error) {
	if strings.TrimSpace(in.Contact) == "" {
		return domain.Announcement{}, domain.ErrContactRequired
	}
	if in.Slots < domain.MinSlots || in.Slots > domain.MaxSlots {
		return domain.Announcement{}, domain.ErrInvalidSlotCount
	}
	if in.VenueID == "" {
		return domain.Announcement{}, domain.ErrInvalidID
	}
	if _, err := s.venues.GetVenue(ctx, in.VenueID); err != nil {
		return domain.Announcement{}, err
	}

	announcement := domain.Announcement{
		ID:             uuid.NewString(),
		VenueID:        in.VenueID,
		SlotsRemaining: in.Slots,
		Contact:        in.Contact,
		Attendees:      []string{},
		CreatedAt:      s.clock.Now().UTC(),
	}

	if err := s.repo.CreateAnnouncement(ctx, announcement); err != nil {
		return domain.Announcement{}, err
	}
	return announcement, nil
}

// AnnouncementView is an announcement decorated with its venue for display.
// VenueName and VenueSport are empty when the venue has been deleted.
type AnnouncementView struct {
	domain.Announcement
	VenueName  string
	VenueSport string
}

// ListActive returns the announcements inside the 24h window, newest first.
// A deleted venue never fails the listing; the entry simply loses its venue
// decoration.
func (s *RosterService) ListActive(ctx context.Context) ([]AnnouncementView, error) {
	cutoff := domain.VisibilityCutoff(s.clock.Now())

	announcements, err := s.repo.ListActiveSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	venues, err := s.venues.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Venue, len(venues))
	for _, v := range venues {
		byID[v.ID] = v
	}

	views := make([]AnnouncementView, 0, len(announcements))
	for _, a := range announcements {
		view := AnnouncementView{Announcement: a}
		if v, ok := byID[a.VenueID]; ok {
			view.VenueName = v.Name
			view.VenueSport = v.Sport
		}
		views = append(views, view)
	}
	return views, nil
}

type JoinInput struct {
	AnnouncementID string
	Name           string
	Contact        string
}

// Join appends one attendee and decrements the slot counter as a single
// transaction. The row lock serializes concurrent joins on the same
// announcement; the guarded update behind ApplyJoin means a slot can never
// be taken twice even if that lock is bypassed.
func (s *RosterService) Join(ctx context.Context, in JoinInput) (domain.Announcement, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Announcement{}, domain.ErrJoinerNameRequired
	}
	if strings.TrimSpace(in.Contact) == "" {
		return domain.Announcement{}, domain.ErrContactRequired
	}
	if in.AnnouncementID == "" {
		return domain.Announcement{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	entry := fmt.Sprintf("%s (%s)", in.Name, in.Contact)

	var result domain.Announcement
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		announcement, err := s.repo.GetAnnouncementForUpdate(txCtx, in.AnnouncementID)
		if err != nil {
			return err
		}
		if !announcement.IsActive(now) {
			return domain.ErrAnnouncementExpired
		}
		if announcement.IsFull() {
			return domain.ErrAnnouncementFull
		}

		updated, err := s.repo.ApplyJoin(txCtx, in.AnnouncementID, entry, domain.VisibilityCutoff(now))
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return domain.Announcement{}, err
	}
	return result, nil
}
