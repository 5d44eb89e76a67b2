package invitation

import "wedding-invitation/internal/models"

// Props is the configuration bundle of one invitation page
type Props struct {
	EventDetails models.EventDetails
	GuestName    string
	OnAccept     func()
	HasResponded bool
	Accepted     bool
	RSVPConfig   *models.RSVPConfig
}

// RSVPSection is what the RSVP collaborator receives
type RSVPSection struct {
	GuestStatus          models.RSVPStatus
	GuestName            string
	Config               models.RSVPConfig
	HasCustomFields      bool
	OnAccept             func()
	OnSubmitCustomFields func()
	OnRequestEdit        func()
}

// RSVP builds the RSVP section props. Custom field submission shares the
// accept callback, and edit requests are ignored.
func (p Props) RSVP() RSVPSection {
	cfg := models.DefaultRSVPConfig()
	hasCustomFields := false
	if p.RSVPConfig != nil {
		cfg = *p.RSVPConfig
		if cfg.Type == "" {
			cfg.Type = models.RSVPTypeSimple
		}
		hasCustomFields = p.RSVPConfig.HasCustomFields
	}

	onAccept := p.OnAccept
	if onAccept == nil {
		onAccept = func() {}
	}

	return RSVPSection{
		GuestStatus:          models.DeriveRSVPStatus(p.HasResponded, p.Accepted),
		GuestName:            p.GuestName,
		Config:               cfg,
		HasCustomFields:      hasCustomFields,
		OnAccept:             onAccept,
		OnSubmitCustomFields: onAccept,
		OnRequestEdit:        func() {},
	}
}
