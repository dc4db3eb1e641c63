package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RigobertoCast/donde-jugar-chile/internal/domain"
)

type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

func (r *AnnouncementRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, a domain.Announcement) error {
	const stmt = `
INSERT INTO announcements (id, venue_id, slots_remaining, contact, attendees, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.exec(ctx, stmt,
		a.ID,
		a.VenueID,
		a.SlotsRemaining,
		a.Contact,
		a.Attendees,
		a.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVenueNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// GetAnnouncementForUpdate locks the row for the rest of the transaction so
// concurrent joins on the same announcement serialize.
func (r *AnnouncementRepository) GetAnnouncementForUpdate(ctx context.Context, id string) (domain.Announcement, error) {
	const query = `
SELECT id, venue_id, slots_remaining, contact, attendees, created_at
FROM announcements
WHERE id = $1
FOR UPDATE`
	a, err := r.scanAnnouncement(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Announcement{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Announcement{}, domain.ErrAnnouncementNotFound
		}
		return domain.Announcement{}, fmt.Errorf("get announcement: %w", err)
	}
	return a, nil
}

// ApplyJoin appends the attendee entry and decrements the slot counter in a
// single guarded statement. The WHERE clause re-checks the slot count and the
// visibility window, so the update can never drive slots_remaining below zero
// even if the caller's read went stale.
func (r *AnnouncementRepository) ApplyJoin(ctx context.Context, id, entry string, cutoff time.Time) (domain.Announcement, error) {
	const stmt = `
UPDATE announcements
SET slots_remaining = slots_remaining - 1,
    attendees = array_append(attendees, $2)
WHERE id = $1 AND slots_remaining > 0 AND created_at > $3
RETURNING id, venue_id, slots_remaining, contact, attendees, created_at`
	a, err := r.scanAnnouncement(r.queryRow(ctx, stmt, id, entry, cutoff))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Announcement{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Announcement{}, domain.ErrSlotConflict
		}
		return domain.Announcement{}, fmt.Errorf("apply join: %w", err)
	}
	return a, nil
}

// ListActiveSince returns announcements created after the cutoff, newest
// first. The ordering is a user-facing contract.
func (r *AnnouncementRepository) ListActiveSince(ctx context.Context, cutoff time.Time) ([]domain.Announcement, error) {
	const query = `
SELECT id, venue_id, slots_remaining, contact, attendees, created_at
FROM announcements
WHERE created_at > $1
ORDER BY created_at DESC`
	rows, err := r.query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list active announcements: %w", err)
	}
	defer rows.Close()

	var announcements []domain.Announcement
	for rows.Next() {
		a, err := r.scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate announcements: %w", rows.Err())
	}
	return announcements, nil
}

// scanAnnouncement tolerates a NULL venue_id: deleting a venue orphans its
// announcements instead of cascading.
func (r *AnnouncementRepository) scanAnnouncement(row pgx.Row) (domain.Announcement, error) {
	var a domain.Announcement
	var venueID *string
	if err := row.Scan(&a.ID, &venueID, &a.SlotsRemaining, &a.Contact, &a.Attendees, &a.CreatedAt); err != nil {
		return domain.Announcement{}, err
	}
	if venueID != nil {
		a.VenueID = *venueID
	}
	if a.Attendees == nil {
		a.Attendees = []string{}
	}
	return a, nil
}

func (r *AnnouncementRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *AnnouncementRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *AnnouncementRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
