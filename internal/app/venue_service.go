package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/RigobertoCast/donde-jugar-chile/internal/domain"
	"github.com/RigobertoCast/donde-jugar-chile/internal/geocode"
	"github.com/RigobertoCast/donde-jugar-chile/internal/sport"
)

type VenueRepository interface {
	CreateVenue(ctx context.Context, venue domain.Venue) error
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
}

// VenueService owns the venue directory: listing, category filtering, and
// the admin create/delete flow. Venues are immutable once created.
type VenueService struct {
	repo     VenueRepository
	geocoder geocode.Geocoder
	clock    clockwork.Clock
}

func NewVenueService(repo VenueRepository, geocoder geocode.Geocoder, clk clockwork.Clock) *VenueService {
	return &VenueService{
		repo:     repo,
		geocoder: geocoder,
		clock:    clk,
	}
}

type CreateVenueInput struct {
	Name    string
	Address string
	Sport   string
}

// CreateVenue geocodes the address and persists the venue. A failed geocode
// aborts without persisting anything.
func (s *VenueService) CreateVenue(ctx context.Context, in CreateVenueInput) (domain.Venue, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Venue{}, domain.ErrVenueNameRequired
	}
	if strings.TrimSpace(in.Address) == "" {
		return domain.Venue{}, domain.ErrVenueAddressRequired
	}
	if strings.TrimSpace(in.Sport) == "" {
		return domain.Venue{}, domain.ErrVenueSportRequired
	}

	point, err := s.geocoder.Geocode(ctx, in.Address)
	if err != nil {
		return domain.Venue{}, err
	}

	venue := domain.Venue{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Address:   in.Address,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		Sport:     in.Sport,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return domain.Venue{}, err
	}
	return venue, nil
}

// ListAll returns every venue in stable store order.
func (s *VenueService) ListAll(ctx context.Context) ([]domain.Venue, error) {
	return s.repo.ListVenues(ctx)
}

// ListFiltered returns the venues whose sport text matches any selected
// category label. An empty selection returns an empty list: clearing all
// filters hides everything rather than showing everything.
func (s *VenueService) ListFiltered(ctx context.Context, selected []string) ([]domain.Venue, error) {
	if len(selected) == 0 {
		return []domain.Venue{}, nil
	}

	venues, err := s.repo.ListVenues(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Venue, 0, len(venues))
	for _, v := range venues {
		if sport.MatchesAny(selected, v.Sport) {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

func (s *VenueService) DeleteVenue(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteVenue(ctx, id)
}
