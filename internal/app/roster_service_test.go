package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/RigobertoCast/donde-jugar-chile/internal/domain"
)

func TestRosterService_CreateAnnouncement(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	venue := domain.Venue{ID: uuid.NewString(), Name: "Cancha La Florida", Sport: "Fútbol"}

	makeSvc := func() (*RosterService, *fakeRosterRepo) {
		repo := newFakeRosterRepo()
		venues := newFakeVenueReader(venue)
		svc := NewRosterService(repo, venues, clockwork.NewFakeClockAt(now))
		return svc, repo
	}

	t.Run("creates announcement with empty roster", func(t *testing.T) {
		svc, repo := makeSvc()

		a, err := svc.CreateAnnouncement(context.Background(), CreateAnnouncementInput{
			VenueID: venue.ID,
			Slots:   3,
			Contact: "+56 9 1111 2222",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if a.ID == "" {
			t.Fatalf("expected announcement ID to be set")
		}
		if a.SlotsRemaining != 3 {
			t.Fatalf("expected 3 slots, got %d", a.SlotsRemaining)
		}
		if len(a.Attendees) != 0 {
			t.Fatalf("expected empty attendees, got %v", a.Attendees)
		}
		if !a.CreatedAt.Equal(now) {
			t.Fatalf("expected created_at %v, got %v", now, a.CreatedAt)
		}
		if len(repo.announcements) != 1 {
			t.Fatalf("expected 1 announcement persisted, got %d", len(repo.announcements))
		}
	})

	t.Run("empty contact is rejected", func(t *testing.T) {
		svc, repo := makeSvc()
		_, err := svc.CreateAnnouncement(context.Background(), CreateAnnouncementInput{
			VenueID: venue.ID,
			Slots:   3,
			Contact: "   ",
		})
		if err != domain.ErrContactRequired {
			t.Fatalf("expected ErrContactRequired, got %v", err)
		}
		if len(repo.announcements) != 0 {
			t.Fatalf("expected nothing persisted")
		}
	})

	t.Run("slot count outside 1..10 is rejected", func(t *testing.T) {
		svc, _ := makeSvc()
		for _, slots := range []int{0, -1, 11} {
			_, err := svc.CreateAnnouncement(context.Background(), CreateAnnouncementInput{
				VenueID: venue.ID,
				Slots:   slots,
				Contact: "captain",
			})
			if err != domain.ErrInvalidSlotCount {
				t.Fatalf("slots=%d: expected ErrInvalidSlotCount, got %v", slots, err)
			}
		}
	})

	t.Run("boundary slot counts are accepted", func(t *testing.T) {
		svc, _ := makeSvc()
		for _, slots := range []int{1, 10} {
			if _, err := svc.CreateAnnouncement(context.Background(), CreateAnnouncementInput{
				VenueID: venue.ID,
				Slots:   slots,
				Contact: "captain",
			}); err != nil {
				t.Fatalf("slots=%d: expected no error, got %v", slots, err)
			}
		}
	})

	t.Run("unknown venue is rejected", func(t *testing.T) {
		svc, repo := makeSvc()
		_, err := svc.CreateAnnouncement(context.Background(), CreateAnnouncementInput{
			VenueID: uuid.NewString(),
			Slots:   3,
			Contact: "captain",
		})
		if err != domain.ErrVenueNotFound {
			t.Fatalf("expected ErrVenueNotFound, got %v", err)
		}
		if len(repo.announcements) != 0 {
			t.Fatalf("expected nothing persisted")
		}
	})
}

func TestRosterService_ListActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	venue := domain.Venue{ID: uuid.NewString(), Name: "Cancha La Florida", Sport: "Fútbol"}

	t.Run("round-trip returns the created announcement", func(t *testing.T) {
		repo := newFakeRosterRepo()
		svc := NewRosterService(repo, newFakeVenueReader(venue), clockwork.NewFakeClockAt(now))

		created, err := svc.CreateAnnouncement(context.Background(), CreateAnnouncementInput{
			VenueID: venue.ID,
			Slots:   5,
			Contact: "captain",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		views, err := svc.ListActive(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("expected 1 view, got %d", len(views))
		}
		if views[0].ID != created.ID || views[0].SlotsRemaining != 5 || len(views[0].Attendees) != 0 {
			t.Fatalf("unexpected view: %+v", views[0])
		}
		if views[0].VenueName != venue.Name || views[0].VenueSport != venue.Sport {
			t.Fatalf("expected venue decoration, got %+v", views[0])
		}
	})

	t.Run("excludes announcements at or past the 24h cutoff", func(t *testing.T) {
		repo := newFakeRosterRepo()
		svc := NewRosterService(repo, newFakeVenueReader(venue), clockwork.NewFakeClockAt(now))

		repo.seed(domain.Announcement{ID: "fresh", VenueID: venue.ID, SlotsRemaining: 2, CreatedAt: now.Add(-time.Hour)})
		repo.seed(domain.Announcement{ID: "boundary", VenueID: venue.ID, SlotsRemaining: 2, CreatedAt: now.Add(-domain.AnnouncementTTL)})
		repo.seed(domain.Announcement{ID: "stale", VenueID: venue.ID, SlotsRemaining: 2, CreatedAt: now.Add(-30 * time.Hour)})
		// Full announcements stay listed until they expire.
		repo.seed(domain.Announcement{ID: "full", VenueID: venue.ID, SlotsRemaining: 0, CreatedAt: now.Add(-2 * time.Hour)})

		views, err := svc.ListActive(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		ids := make([]string, 0, len(views))
		for _, v := range views {
			ids = append(ids, v.ID)
		}
		if len(ids) != 2 || ids[0] != "fresh" || ids[1] != "full" {
			t.Fatalf("expected [fresh full], got %v", ids)
		}
	})

	t.Run("orders newest first", func(t *testing.T) {
		repo := newFakeRosterRepo()
		svc := NewRosterService(repo, newFakeVenueReader(venue), clockwork.NewFakeClockAt(now))

		repo.seed(domain.Announcement{ID: "older", VenueID: venue.ID, SlotsRemaining: 1, CreatedAt: now.Add(-3 * time.Hour)})
		repo.seed(domain.Announcement{ID: "newest", VenueID: venue.ID, SlotsRemaining: 1, CreatedAt: now.Add(-time.Minute)})
		repo.seed(domain.Announcement{ID: "middle", VenueID: venue.ID, SlotsRemaining: 1, CreatedAt: now.Add(-time.Hour)})

		views, err := svc.ListActive(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := []string{views[0].ID, views[1].ID, views[2].ID}
		want := []string{"newest", "middle", "older"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})

	t.Run("deleted venue leaves announcement listed without decoration", func(t *testing.T) {
		repo := newFakeRosterRepo()
		svc := NewRosterService(repo, newFakeVenueReader(), clockwork.NewFakeClockAt(now))

		repo.seed(domain.Announcement{ID: "orphan", VenueID: uuid.NewString(), SlotsRemaining: 2, CreatedAt: now.Add(-time.Hour)})

		views, err := svc.ListActive(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("expected orphan to be listed, got %d views", len(views))
		}
		if views[0].VenueName != "" || views[0].VenueSport != "" {
			t.Fatalf("expected empty decoration, got %+v", views[0])
		}
	})
}

func TestRosterService_Join(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	venue := domain.Venue{ID: uuid.NewString(), Name: "Cancha La Florida", Sport: "Fútbol"}

	makeSvc := func() (*RosterService, *fakeRosterRepo) {
		repo := newFakeRosterRepo()
		svc := NewRosterService(repo, newFakeVenueReader(venue), clockwork.NewFakeClockAt(now))
		return svc, repo
	}

	t.Run("appends attendee and decrements slots", func(t *testing.T) {
		svc, repo := makeSvc()
		repo.seed(domain.Announcement{ID: "a1", VenueID: venue.ID, SlotsRemaining: 3, CreatedAt: now.Add(-time.Hour)})

		updated, err := svc.Join(context.Background(), JoinInput{
			AnnouncementID: "a1",
			Name:           "Pedro",
			Contact:        "+56 9 3333 4444",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.SlotsRemaining != 2 {
			t.Fatalf("expected 2 slots, got %d", updated.SlotsRemaining)
		}
		if len(updated.Attendees) != 1 || updated.Attendees[0] != "Pedro (+56 9 3333 4444)" {
			t.Fatalf("unexpected attendees: %v", updated.Attendees)
		}
	})

	t.Run("unknown announcement", func(t *testing.T) {
		svc, _ := makeSvc()
		_, err := svc.Join(context.Background(), JoinInput{AnnouncementID: "missing", Name: "Pedro", Contact: "x"})
		if err != domain.ErrAnnouncementNotFound {
			t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
		}
	})

	t.Run("expired announcement is not joinable and stays unchanged", func(t *testing.T) {
		svc, repo := makeSvc()
		repo.seed(domain.Announcement{ID: "old", VenueID: venue.ID, SlotsRemaining: 2, CreatedAt: now.Add(-25 * time.Hour)})

		_, err := svc.Join(context.Background(), JoinInput{AnnouncementID: "old", Name: "Pedro", Contact: "x"})
		if err != domain.ErrAnnouncementExpired {
			t.Fatalf("expected ErrAnnouncementExpired, got %v", err)
		}
		a := repo.get("old")
		if a.SlotsRemaining != 2 || len(a.Attendees) != 0 {
			t.Fatalf("expected no mutation, got %+v", a)
		}
	})

	t.Run("full announcement is not joinable and stays unchanged", func(t *testing.T) {
		svc, repo := makeSvc()
		repo.seed(domain.Announcement{
			ID: "full", VenueID: venue.ID, SlotsRemaining: 0,
			Attendees: []string{"Ana (a)"}, CreatedAt: now.Add(-time.Hour),
		})

		_, err := svc.Join(context.Background(), JoinInput{AnnouncementID: "full", Name: "Pedro", Contact: "x"})
		if err != domain.ErrAnnouncementFull {
			t.Fatalf("expected ErrAnnouncementFull, got %v", err)
		}
		a := repo.get("full")
		if a.SlotsRemaining != 0 || len(a.Attendees) != 1 {
			t.Fatalf("expected no mutation, got %+v", a)
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		svc, _ := makeSvc()
		if _, err := svc.Join(context.Background(), JoinInput{AnnouncementID: "a", Name: "", Contact: "x"}); err != domain.ErrJoinerNameRequired {
			t.Fatalf("expected ErrJoinerNameRequired, got %v", err)
		}
		if _, err := svc.Join(context.Background(), JoinInput{AnnouncementID: "a", Name: "Pedro", Contact: " "}); err != domain.ErrContactRequired {
			t.Fatalf("expected ErrContactRequired, got %v", err)
		}
	})

	t.Run("concurrent joins never take the last slot twice", func(t *testing.T) {
		svc, repo := makeSvc()
		repo.seed(domain.Announcement{ID: "last", VenueID: venue.ID, SlotsRemaining: 1, CreatedAt: now.Add(-time.Hour)})

		const joiners = 8
		var wg sync.WaitGroup
		errs := make([]error, joiners)
		for i := 0; i < joiners; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Join(context.Background(), JoinInput{
					AnnouncementID: "last",
					Name:           uuid.NewString(),
					Contact:        "c",
				})
			}(i)
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrAnnouncementFull), errors.Is(err, domain.ErrSlotConflict):
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if successes != 1 {
			t.Fatalf("expected exactly 1 successful join, got %d", successes)
		}

		a := repo.get("last")
		if a.SlotsRemaining != 0 {
			t.Fatalf("expected 0 slots, got %d", a.SlotsRemaining)
		}
		if len(a.Attendees) != 1 {
			t.Fatalf("expected exactly 1 attendee, got %d", len(a.Attendees))
		}
	})

	t.Run("joins exceeding slots never go negative", func(t *testing.T) {
		svc, repo := makeSvc()
		repo.seed(domain.Announcement{ID: "a3", VenueID: venue.ID, SlotsRemaining: 3, CreatedAt: now.Add(-time.Hour)})

		const joiners = 10
		var wg sync.WaitGroup
		for i := 0; i < joiners; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.Join(context.Background(), JoinInput{AnnouncementID: "a3", Name: uuid.NewString(), Contact: "c"})
			}()
		}
		wg.Wait()

		a := repo.get("a3")
		if a.SlotsRemaining != 0 {
			t.Fatalf("expected slots drained to 0, got %d", a.SlotsRemaining)
		}
		if len(a.Attendees) != 3 {
			t.Fatalf("expected 3 attendees, got %d", len(a.Attendees))
		}
	})
}

// fakeRosterRepo emulates the Postgres repository: WithTx serializes access
// the way the row lock does, and applyJoin re-checks its guard the way the
// conditional UPDATE does.
type fakeRosterRepo struct {
	txMu          sync.Mutex
	mu            sync.Mutex
	announcements map[string]*domain.Announcement
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{announcements: make(map[string]*domain.Announcement)}
}

func (f *fakeRosterRepo) seed(a domain.Announcement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.Attendees == nil {
		a.Attendees = []string{}
	}
	f.announcements[a.ID] = &a
}

func (f *fakeRosterRepo) get(id string) domain.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.announcements[id]
}

func (f *fakeRosterRepo) WithTx(_ context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(context.Background())
}

func (f *fakeRosterRepo) CreateAnnouncement(_ context.Context, a domain.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announcements[a.ID] = &a
	return nil
}

func (f *fakeRosterRepo) GetAnnouncementForUpdate(_ context.Context, id string) (domain.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok {
		return domain.Announcement{}, domain.ErrAnnouncementNotFound
	}
	return *a, nil
}

func (f *fakeRosterRepo) ApplyJoin(_ context.Context, id, entry string, cutoff time.Time) (domain.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok || a.SlotsRemaining <= 0 || !a.CreatedAt.After(cutoff) {
		return domain.Announcement{}, domain.ErrSlotConflict
	}
	a.SlotsRemaining--
	a.Attendees = append(a.Attendees, entry)
	return *a, nil
}

func (f *fakeRosterRepo) ListActiveSince(_ context.Context, cutoff time.Time) ([]domain.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Announcement
	for _, a := range f.announcements {
		if a.CreatedAt.After(cutoff) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeVenueReader struct {
	venues map[string]domain.Venue
}

func newFakeVenueReader(venues ...domain.Venue) *fakeVenueReader {
	byID := make(map[string]domain.Venue, len(venues))
	for _, v := range venues {
		byID[v.ID] = v
	}
	return &fakeVenueReader{venues: byID}
}

func (f *fakeVenueReader) GetVenue(_ context.Context, id string) (domain.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return v, nil
}

func (f *fakeVenueReader) ListVenues(_ context.Context) ([]domain.Venue, error) {
	out := make([]domain.Venue, 0, len(f.venues))
	for _, v := range f.venues {
		out = append(out, v)
	}
	return out, nil
}
