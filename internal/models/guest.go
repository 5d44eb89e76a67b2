package models

import (
	"maps"
	"time"
)

// Guest represents an invited wedding guest
type Guest struct {
	Token        string            `json:"token"`
	Name         string            `json:"name"`
	PhoneNumber  string            `json:"phone_number,omitempty"`
	HasResponded bool              `json:"has_responded"`
	Accepted     bool              `json:"accepted"`
	InvitedDate  time.Time         `json:"invited_date"`
	ViewedDate   time.Time         `json:"viewed_date"`
	RSVPDate     time.Time         `json:"rsvp_date"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// Clone returns a copy of g that shares no maps with it
func (g Guest) Clone() Guest {
	g.CustomFields = maps.Clone(g.CustomFields)
	return g
}

// Status returns the RSVP display state for the guest
func (g Guest) Status() RSVPStatus {
	return DeriveRSVPStatus(g.HasResponded, g.Accepted)
}

// RSVPStatus is the display state of a guest's RSVP. It is always derived,
// never stored.
type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPViewed   RSVPStatus = "viewed"
	RSVPAccepted RSVPStatus = "accepted"
)

// DeriveRSVPStatus maps the two stored flags onto a display state.
// An accepted flag without a response is treated as pending.
func DeriveRSVPStatus(hasResponded, accepted bool) RSVPStatus {
	switch {
	case hasResponded && accepted:
		return RSVPAccepted
	case hasResponded:
		return RSVPViewed
	default:
		return RSVPPending
	}
}

// RSVPType selects how the RSVP section collects a response
type RSVPType string

const (
	RSVPTypeSimple RSVPType = "simple"
	RSVPTypeForm   RSVPType = "form"
)

// RSVPConfig configures the RSVP section of the invitation page
type RSVPConfig struct {
	Type            RSVPType      `json:"type" validate:"omitempty,oneof=simple form"`
	HasCustomFields bool          `json:"hasCustomFields"`
	CustomFields    []CustomField `json:"customFields,omitempty" validate:"dive"`
}

// CustomField is an extra question asked in the RSVP section
type CustomField struct {
	Name     string `json:"name" validate:"required,alphanum"`
	Label    string `json:"label" validate:"required"`
	Required bool   `json:"required"`
}

// DefaultRSVPConfig is used when no RSVP configuration is supplied
func DefaultRSVPConfig() RSVPConfig {
	return RSVPConfig{Type: RSVPTypeSimple}
}
