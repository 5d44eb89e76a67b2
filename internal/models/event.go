package models

import (
	"encoding/json"
	"fmt"
)

// GroomFirst is the value of EventDetails.GroomFirst that puts the groom's
// name before the bride's.
const GroomFirst = "Groom First"

// EventDetails is the read-only description of a wedding supplied by the
// data provider. Field names follow the upstream JSON document.
type EventDetails struct {
	BrideName     string  `json:"bride_name"`
	GroomName     string  `json:"groom_name"`
	GroomFirst    string  `json:"groom_first"`
	WeddingDate   string  `json:"wedding_date" validate:"required"`
	WeddingTime   string  `json:"wedding_time"`
	CoupleTagline string  `json:"couple_tagline"`
	Events        []Event `json:"events" validate:"dive"`
	Photos        []Photo `json:"photos" validate:"dive"`

	// BackgroundMusic is the audio source played on both screens
	BackgroundMusic string `json:"background_music,omitempty"`

	BrideFamily            *FamilyRecord `json:"bride_family,omitempty"`
	BrideFamilyTitle       string        `json:"bride_family_title"`
	BrideFamilyDescription string        `json:"bride_family_description"`
	GroomFamily            *FamilyRecord `json:"groom_family,omitempty"`
	GroomFamilyTitle       string        `json:"groom_family_title"`
	GroomFamilyDescription string        `json:"groom_family_description"`
}

// Event is a single ceremony or celebration in the wedding programme
type Event struct {
	Name        string `json:"EVENT_NAME" validate:"required"`
	Date        string `json:"EVENT_DATE"`
	Time        string `json:"EVENT_TIME"`
	Venue       string `json:"EVENT_VENUE"`
	VenueMapURL string `json:"EVENT_VENUE_MAP_LINK,omitempty" validate:"omitempty,url"`
}

// FamilyRecord lists the members of one side of the family
type FamilyRecord struct {
	Members []FamilyMember `json:"FAMILY_MEMBERS" validate:"dive"`
}

// FamilyMember is a person shown in a family disclosure panel
type FamilyMember struct {
	Name     string `json:"name" validate:"required"`
	Relation string `json:"relation"`
	Phone    string `json:"phone,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

// Photo is a couple photo reference. Upstream documents encode each photo
// as an object with a single arbitrary key whose value is the image source.
type Photo struct {
	Src string `validate:"required"`
}

// UnmarshalJSON accepts either a single-key object or a bare string
func (p *Photo) UnmarshalJSON(data []byte) error {
	var src string
	if err := json.Unmarshal(data, &src); err == nil {
		p.Src = src
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("photo must be a string or a single-key object: %w", err)
	}
	if len(m) != 1 {
		return fmt.Errorf("photo object must have exactly one key, got %d", len(m))
	}
	for _, v := range m {
		p.Src = v
	}
	return nil
}

// MarshalJSON writes the photo back as a single-key object
func (p Photo) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"src": p.Src})
}
