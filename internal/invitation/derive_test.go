package invitation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-invitation/internal/models"
)

func sampleDetails() models.EventDetails {
	return models.EventDetails{
		BrideName:     "Priya",
		GroomName:     "Arjun",
		WeddingDate:   "2026-12-12",
		WeddingTime:   "18:30",
		CoupleTagline: "Two hearts, one journey",
		Events: []models.Event{
			{Name: "Mehndi Ceremony", Date: "10 Dec", Venue: "Garden"},
			{Name: "Sangeet Night", Date: "11 Dec", Venue: "Hall", VenueMapURL: "https://maps.example.com/hall"},
			{Name: "Wedding Ceremony", Date: "12 Dec", Venue: "Temple"},
		},
		Photos: []models.Photo{{Src: "/a.jpg"}, {Src: "/b.jpg"}},
		BrideFamily: &models.FamilyRecord{Members: []models.FamilyMember{
			{Name: "Meera", Relation: "Mother"},
		}},
		BrideFamilyTitle:       "The Sharmas",
		BrideFamilyDescription: "Bride's family",
	}
}

func TestOrderNames(t *testing.T) {
	details := sampleDetails()

	for _, flag := range []string{"", "Bride First", models.GroomFirst, "groom first"} {
		details.GroomFirst = flag
		names := OrderNames(details)

		brideFirst := Names{First: "Priya", Second: "Arjun"}
		groomFirst := Names{First: "Arjun", Second: "Priya"}
		assert.True(t, names == brideFirst || names == groomFirst, "flag %q gave %+v", flag, names)
		if flag == models.GroomFirst {
			assert.Equal(t, groomFirst, names)
		} else {
			assert.Equal(t, brideFirst, names)
		}
	}
}

func TestOrderNamesFallbacks(t *testing.T) {
	assert.Equal(t, Names{First: "Bride", Second: "Groom"}, OrderNames(models.EventDetails{}))
	assert.Equal(t, Names{First: "Groom", Second: "Bride"}, OrderNames(models.EventDetails{GroomFirst: models.GroomFirst}))
}

func TestEventIcon(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Mehndi Ceremony", want: IconPaintbrush},
		{name: "Sangeet Night", want: IconMusic},
		{name: "Wedding Ceremony", want: IconHeart},
		{name: "Mehndi and Sangeet", want: IconPaintbrush},
		{name: "sangeet", want: IconHeart},
		{name: "", want: IconHeart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EventIcon(tt.name))
		})
	}
}

func TestProjectEvents(t *testing.T) {
	cards := ProjectEvents(sampleDetails().Events)
	require.Len(t, cards, 3)
	assert.Equal(t, EventCard{
		Title:  "Sangeet Night",
		Date:   "11 Dec",
		Venue:  "Hall",
		Icon:   IconMusic,
		MapURL: "https://maps.example.com/hall",
	}, cards[1])
	assert.Empty(t, ProjectEvents(nil))
}

func TestProjectPhotos(t *testing.T) {
	slides := ProjectPhotos([]models.Photo{{Src: "/one.jpg"}, {Src: "/two.jpg"}})
	assert.Equal(t, []Slide{
		{Src: "/one.jpg", Alt: "Couple photo 1"},
		{Src: "/two.jpg", Alt: "Couple photo 2"},
	}, slides)
	assert.Empty(t, ProjectPhotos(nil))
}

func TestProjectFamilies(t *testing.T) {
	details := sampleDetails()

	families := ProjectFamilies(details)
	require.Len(t, families, 1)
	assert.Equal(t, SideBride, families[0].Side)
	assert.Equal(t, "The Sharmas", families[0].Title)
	assert.Len(t, families[0].Members, 1)

	details.GroomFamily = &models.FamilyRecord{}
	details.GroomFamilyTitle = "The Kapoors"
	families = ProjectFamilies(details)
	require.Len(t, families, 2)
	assert.Equal(t, SideGroom, families[1].Side)
	assert.Empty(t, families[1].Members)

	assert.Empty(t, ProjectFamilies(models.EventDetails{}))
}

func TestDeriveIsPure(t *testing.T) {
	details := sampleDetails()

	first := Derive(details)
	first.Families[0].Members[0].Name = "changed"

	second := Derive(details)
	assert.Equal(t, "Meera", details.BrideFamily.Members[0].Name)
	assert.Equal(t, "Meera", second.Families[0].Members[0].Name)
	assert.Equal(t, Derive(details), second)
}

func TestDeriveMusic(t *testing.T) {
	details := sampleDetails()
	assert.Empty(t, Derive(details).Music)

	details.BackgroundMusic = "/media/shehnai.mp3"
	assert.Equal(t, "/media/shehnai.mp3", Derive(details).Music)
}

func TestDisplayFamily(t *testing.T) {
	d := Derive(sampleDetails())

	f, ok := d.Family(SideBride)
	assert.True(t, ok)
	assert.Equal(t, "The Sharmas", f.Title)

	_, ok = d.Family(SideGroom)
	assert.False(t, ok)
}

func TestCountdownTarget(t *testing.T) {
	got, ok := CountdownTarget("2026-12-12", "18:30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 12, 12, 18, 30, 0, 0, time.Local), got)

	got, ok = CountdownTarget("December 12, 2026", "6:30 pm")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 12, 12, 18, 30, 0, 0, time.Local), got)

	got, ok = CountdownTarget("05.01.2026", "")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local), got)

	_, ok = CountdownTarget("sometime soon", "")
	assert.False(t, ok)
}
