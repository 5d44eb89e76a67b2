package invitation

import "github.com/rs/zerolog"

// Disclosure tracks which family panel is selected and whether it is open.
// Closing the panel keeps the selection until another family is selected.
type Disclosure struct {
	selected *FamilyDetails
	open     bool
	log      zerolog.Logger
}

// NewDisclosure returns a closed disclosure with nothing selected
func NewDisclosure(log zerolog.Logger) *Disclosure {
	return &Disclosure{log: log}
}

// SelectFamily selects family and opens the panel
func (d *Disclosure) SelectFamily(family FamilyDetails) {
	d.log.Info().Str("side", string(family.Side)).Msg("User clicked on family section")
	f := family
	d.selected = &f
	d.open = true
}

// SetOpen is the open/close toggle of the panel
func (d *Disclosure) SetOpen(open bool) {
	d.log.Debug().Bool("open", open).Msg("Family dialog state change")
	d.open = open
}

// CloseDisclosure closes the panel
func (d *Disclosure) CloseDisclosure() {
	d.SetOpen(false)
}

// Selected returns the last selected family, or nil
func (d *Disclosure) Selected() *FamilyDetails {
	return d.selected
}

// Open reports whether the panel is open
func (d *Disclosure) Open() bool {
	return d.open
}
