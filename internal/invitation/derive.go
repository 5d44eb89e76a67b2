package invitation

import (
	"fmt"
	"strings"
	"time"

	"wedding-invitation/internal/models"
)

// Lucide icon names used on event cards
const (
	IconPaintbrush = "paintbrush"
	IconMusic      = "music"
	IconHeart      = "heart"
)

const (
	defaultBrideName = "Bride"
	defaultGroomName = "Groom"
)

// Names is the couple's names in display order
type Names struct {
	First  string
	Second string
}

// EventCard is an event ready for display
type EventCard struct {
	Title  string
	Date   string
	Time   string
	Venue  string
	Icon   string
	MapURL string
}

// Slide is one photo of the carousel
type Slide struct {
	Src string
	Alt string
}

// Side identifies which family a disclosure panel belongs to
type Side string

const (
	SideBride Side = "bride"
	SideGroom Side = "groom"
)

// FamilyDetails is the content of a family disclosure panel
type FamilyDetails struct {
	Side        Side
	Title       string
	Description string
	Members     []models.FamilyMember
}

// Display holds everything the invitation screen renders from EventDetails
type Display struct {
	Names       Names
	Tagline     string
	WeddingDate string
	WeddingTime string
	Countdown   time.Time
	Events      []EventCard
	Photos      []Slide
	Families    []FamilyDetails
	Music       string
}

// Family returns the family panel for side, if that side was supplied
func (d Display) Family(side Side) (FamilyDetails, bool) {
	for _, f := range d.Families {
		if f.Side == side {
			return f, true
		}
	}
	return FamilyDetails{}, false
}

// Derive projects event details into display data. It never modifies
// details and returns equal output for equal input.
func Derive(details models.EventDetails) Display {
	countdown, _ := CountdownTarget(details.WeddingDate, details.WeddingTime)
	return Display{
		Names:       OrderNames(details),
		Tagline:     details.CoupleTagline,
		WeddingDate: details.WeddingDate,
		WeddingTime: details.WeddingTime,
		Countdown:   countdown,
		Events:      ProjectEvents(details.Events),
		Photos:      ProjectPhotos(details.Photos),
		Families:    ProjectFamilies(details),
		Music:       details.BackgroundMusic,
	}
}

// OrderNames returns the couple's names with the groom first when the
// details ask for it, and the bride first otherwise.
func OrderNames(details models.EventDetails) Names {
	bride := details.BrideName
	if bride == "" {
		bride = defaultBrideName
	}
	groom := details.GroomName
	if groom == "" {
		groom = defaultGroomName
	}

	if details.GroomFirst == models.GroomFirst {
		return Names{First: groom, Second: bride}
	}
	return Names{First: bride, Second: groom}
}

type iconRule struct {
	keyword string
	icon    string
}

// iconRules are tested in order; the first keyword found in an event name wins
var iconRules = []iconRule{
	{keyword: "Mehndi", icon: IconPaintbrush},
	{keyword: "Sangeet", icon: IconMusic},
}

// EventIcon picks the icon for an event name
func EventIcon(name string) string {
	for _, rule := range iconRules {
		if strings.Contains(name, rule.keyword) {
			return rule.icon
		}
	}
	return IconHeart
}

// ProjectEvents maps raw events onto event cards, keeping their order
func ProjectEvents(events []models.Event) []EventCard {
	cards := make([]EventCard, 0, len(events))
	for _, e := range events {
		cards = append(cards, EventCard{
			Title:  e.Name,
			Date:   e.Date,
			Time:   e.Time,
			Venue:  e.Venue,
			Icon:   EventIcon(e.Name),
			MapURL: e.VenueMapURL,
		})
	}
	return cards
}

// ProjectPhotos maps photos onto carousel slides with 1-based alt text
func ProjectPhotos(photos []models.Photo) []Slide {
	slides := make([]Slide, 0, len(photos))
	for i, p := range photos {
		slides = append(slides, Slide{
			Src: p.Src,
			Alt: fmt.Sprintf("Couple photo %d", i+1),
		})
	}
	return slides
}

// ProjectFamilies returns the bride's then the groom's family panel.
// A side without a family record has no panel.
func ProjectFamilies(details models.EventDetails) []FamilyDetails {
	var families []FamilyDetails
	if details.BrideFamily != nil {
		families = append(families, newFamily(SideBride, details.BrideFamilyTitle, details.BrideFamilyDescription, details.BrideFamily))
	}
	if details.GroomFamily != nil {
		families = append(families, newFamily(SideGroom, details.GroomFamilyTitle, details.GroomFamilyDescription, details.GroomFamily))
	}
	return families
}

func newFamily(side Side, title, description string, record *models.FamilyRecord) FamilyDetails {
	members := make([]models.FamilyMember, len(record.Members))
	copy(members, record.Members)
	return FamilyDetails{
		Side:        side,
		Title:       title,
		Description: description,
		Members:     members,
	}
}

var (
	dateLayouts = []string{"2006-01-02", "January 2, 2006", "Monday, January 2, 2006", "2 January 2006", "02.01.2006", "02/01/2006"}
	timeLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"}
)

// CountdownTarget parses the wedding date and optional time into the moment
// the countdown runs to. It reports false when the date cannot be parsed.
func CountdownTarget(date, clock string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	for _, dl := range dateLayouts {
		d, err := time.ParseInLocation(dl, date, time.Local)
		if err != nil {
			continue
		}
		if clock == "" {
			return d, true
		}
		for _, tl := range timeLayouts {
			t, err := time.Parse(tl, strings.ToUpper(clock))
			if err != nil {
				continue
			}
			return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), true
		}
		return d, true
	}
	return time.Time{}, false
}
