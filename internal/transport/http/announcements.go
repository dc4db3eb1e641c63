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
)

// RosterService is the minimal interface needed by the announcement endpoints.
type RosterService interface {
	CreateAnnouncement(ctx context.Context, in app.CreateAnnouncementInput) (domain.Announcement, error)
	ListActive(ctx context.Context) ([]app.AnnouncementView, error)
	Join(ctx context.Context, in app.JoinInput) (domain.Announcement, error)
}

// HandleAnnouncements serves GET /announcements (active window, newest
// first) and POST /announcements (publish a "falta uno").
func HandleAnnouncements(svc RosterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			views, err := svc.ListActive(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]announcementResponse, 0, len(views))
			for _, v := range views {
				resp = append(resp, toAnnouncementResponse(v.Announcement, v.VenueName, v.VenueSport))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createAnnouncementRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			announcement, err := svc.CreateAnnouncement(r.Context(), app.CreateAnnouncementInput{
				VenueID: req.VenueID,
				Slots:   req.Slots,
				Contact: req.Contact,
			})
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrContactRequired):
					writeError(w, http.StatusBadRequest, codeContactRequired, err.Error())
				case errors.Is(err, domain.ErrInvalidSlotCount):
					writeError(w, http.StatusBadRequest, codeInvalidSlotCount, err.Error())
				case errors.Is(err, domain.ErrInvalidID):
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				case errors.Is(err, domain.ErrVenueNotFound):
					writeError(w, http.StatusNotFound, codeVenueNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toAnnouncementResponse(announcement, "", ""))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleJoin serves POST /announcements/{id}/join.
func HandleJoin(svc RosterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJoinPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req joinRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		updated, err := svc.Join(r.Context(), app.JoinInput{
			AnnouncementID: id,
			Name:           req.Name,
			Contact:        req.Contact,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrJoinerNameRequired):
				writeError(w, http.StatusBadRequest, codeJoinerNameRequired, err.Error())
			case errors.Is(err, domain.ErrContactRequired):
				writeError(w, http.StatusBadRequest, codeContactRequired, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrAnnouncementNotFound):
				writeError(w, http.StatusNotFound, codeAnnouncementNotFound, err.Error())
			case errors.Is(err, domain.ErrAnnouncementExpired):
				writeError(w, http.StatusGone, codeAnnouncementExpired, err.Error())
			case errors.Is(err, domain.ErrAnnouncementFull):
				writeError(w, http.StatusConflict, codeAnnouncementFull, err.Error())
			case errors.Is(err, domain.ErrSlotConflict):
				writeError(w, http.StatusConflict, codeSlotConflict, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toAnnouncementResponse(updated, "", ""))
	}
}

// parseJoinPath extracts the announcement id from /announcements/{id}/join.
func parseJoinPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/announcements/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/join")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

type createAnnouncementRequest struct {
	VenueID string `json:"venue_id"`
	Slots   int    `json:"slots"`
	Contact string `json:"contact"`
}

type joinRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type announcementResponse struct {
	ID             string    `json:"id"`
	VenueID        string    `json:"venue_id,omitempty"`
	VenueName      string    `json:"venue_name,omitempty"`
	VenueSport     string    `json:"venue_sport,omitempty"`
	SlotsRemaining int       `json:"slots_remaining"`
	Full           bool      `json:"full"`
	Contact        string    `json:"contact"`
	Attendees      []string  `json:"attendees"`
	CreatedAt      time.Time `json:"created_at"`
}

func toAnnouncementResponse(a domain.Announcement, venueName, venueSport string) announcementResponse {
	attendees := a.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return announcementResponse{
		ID:             a.ID,
		VenueID:        a.VenueID,
		VenueName:      venueName,
		VenueSport:     venueSport,
		SlotsRemaining: a.SlotsRemaining,
		Full:           a.IsFull(),
		Contact:        a.Contact,
		Attendees:      attendees,
		CreatedAt:      a.CreatedAt,
	}
}
