package domain

import "errors"

var (
	ErrVenueNameRequired    = errors.New("venue name required")
	ErrVenueAddressRequired = errors.New("venue address required")
	ErrVenueSportRequired   = errors.New("venue sport required")
	ErrVenueNotFound        = errors.New("venue not found")
	ErrContactRequired      = errors.New("contact required")
	ErrJoinerNameRequired   = errors.New("joiner name required")
	ErrInvalidSlotCount     = errors.New("slot count out of range")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrAnnouncementExpired  = errors.New("announcement expired")
	ErrAnnouncementFull     = errors.New("announcement full")
	ErrSlotConflict         = errors.New("slot taken by concurrent join")
	ErrGeocodeFailed        = errors.New("address could not be geocoded")
	ErrInvalidID            = errors.New("invalid id")
)
