package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeVenueNameRequired    = "venue_name_required"
	codeVenueAddressRequired = "venue_address_required"
	codeVenueSportRequired   = "venue_sport_required"
	codeVenueNotFound        = "venue_not_found"
	codeGeocodeFailed        = "geocode_failed"
	codeContactRequired      = "contact_required"
	codeJoinerNameRequired   = "joiner_name_required"
	codeInvalidSlotCount     = "invalid_slot_count"
	codeAnnouncementNotFound = "announcement_not_found"
	codeAnnouncementExpired  = "announcement_expired"
	codeAnnouncementFull     = "announcement_full"
	codeSlotConflict         = "slot_conflict"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
