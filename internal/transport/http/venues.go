package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RigobertoCast/donde-jugar-chile/internal/app"
	"github.com/RigobertoCast/donde-jugar-chile/internal/domain"
	"github.com/RigobertoCast/donde-jugar-chile/internal/sport"
)

// VenueService is the minimal interface needed by the venue endpoints.
type VenueService interface {
	CreateVenue(ctx context.Context, in app.CreateVenueInput) (domain.Venue, error)
	ListAll(ctx context.Context) ([]domain.Venue, error)
	ListFiltered(ctx context.Context, selected []string) ([]domain.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
}

// HandleVenues serves GET /venues (category-filtered listing) and
// POST /venues (admin create).
func HandleVenues(svc VenueService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			selected := parseCategories(r.URL.Query().Get("categories"))
			venues, err := svc.ListFiltered(r.Context(), selected)
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			writeVenues(w, venues)
			return
		case http.MethodPost:
			var req createVenueRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			venue, err := svc.CreateVenue(r.Context(), app.CreateVenueInput{
				Name:    req.Name,
				Address: req.Address,
				Sport:   req.Sport,
			})
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrVenueNameRequired):
					writeError(w, http.StatusBadRequest, codeVenueNameRequired, err.Error())
				case errors.Is(err, domain.ErrVenueAddressRequired):
					writeError(w, http.StatusBadRequest, codeVenueAddressRequired, err.Error())
				case errors.Is(err, domain.ErrVenueSportRequired):
					writeError(w, http.StatusBadRequest, codeVenueSportRequired, err.Error())
				case errors.Is(err, domain.ErrGeocodeFailed):
					writeError(w, http.StatusUnprocessableEntity, codeGeocodeFailed, domain.ErrGeocodeFailed.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toVenueResponse(venue))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleVenueByID serves GET /venues/all and DELETE /venues/{id}.
func HandleVenueByID(svc VenueService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest, ok := strings.CutPrefix(r.URL.Path, "/venues/")
		if !ok || rest == "" || strings.Contains(rest, "/") {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if rest == "all" {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			venues, err := svc.ListAll(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			writeVenues(w, venues)
			return
		}

		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		if err := svc.DeleteVenue(r.Context(), rest); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrVenueNotFound):
				writeError(w, http.StatusNotFound, codeVenueNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseCategories(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func writeVenues(w http.ResponseWriter, venues []domain.Venue) {
	resp := make([]venueResponse, 0, len(venues))
	for _, v := range venues {
		resp = append(resp, toVenueResponse(v))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type createVenueRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Sport   string `json:"sport"`
}

type venueResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Sport     string    `json:"sport"`
	Category  string    `json:"category"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

func toVenueResponse(v domain.Venue) venueResponse {
	category := sport.Classify(v.Sport)
	return venueResponse{
		ID:        v.ID,
		Name:      v.Name,
		Address:   v.Address,
		Latitude:  v.Latitude,
		Longitude: v.Longitude,
		Sport:     v.Sport,
		Category:  string(category),
		Icon:      category.Icon(),
		CreatedAt: v.CreatedAt,
	}
}
