package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-invitation/internal/eventdetails"
	"wedding-invitation/internal/invitation"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

type testServer struct {
	server   *httptest.Server
	client   *http.Client
	store    storage.Storage
	notifier *fakeNotifier
	guest    models.Guest
}

func setupTestServer(t *testing.T, rsvp *models.RSVPConfig) *testServer {
	t.Helper()

	notifier := &fakeNotifier{}
	rsvpHandler, store := newTestRSVPHandler(t, notifier)
	guest, err := rsvpHandler.SendInvitation(context.Background(), "972501234567", "Asha", "")
	require.NoError(t, err)

	sessions := invitation.NewSessions(time.Hour, invitation.GlitterEffects(zerolog.Nop()), zerolog.Nop())
	doc := &eventdetails.Document{Details: testDetails(), RSVP: rsvp}
	h, err := NewInvitationHandler(rsvpHandler, store, doc, sessions, zerolog.Nop())
	require.NoError(t, err)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{
		server:   server,
		client:   &http.Client{Jar: jar},
		store:    store,
		notifier: notifier,
		guest:    guest,
	}
}

func (ts *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := ts.client.Get(ts.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (ts *testServer) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := ts.client.PostForm(ts.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (ts *testServer) page() string {
	return "/i/" + ts.guest.Token
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, nil)
	status, body := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)
}

func TestStaticAssets(t *testing.T) {
	ts := setupTestServer(t, nil)
	status, body := ts.get(t, "/static/effects.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "cursor-glitter")
}

func TestUnknownInvitation(t *testing.T) {
	ts := setupTestServer(t, nil)
	status, body := ts.get(t, "/i/does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Invitation not found")
}

func TestWelcomeThenInvitation(t *testing.T) {
	ts := setupTestServer(t, nil)

	status, body := ts.get(t, ts.page())
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Namaste, <strong>Asha</strong>!")
	assert.Contains(t, body, "Arjun &amp; Priya")
	assert.Contains(t, body, "Enter Invitation")
	assert.NotContains(t, body, "data-effect")
	assert.NotContains(t, body, "data-audio")

	status, body = ts.post(t, ts.page()+"/enter", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Celebration Events")
	assert.Contains(t, body, `data-effect="cursor-glitter"`)
	assert.Contains(t, body, "#lucide-paintbrush")
	assert.Contains(t, body, "#lucide-heart")
	assert.Contains(t, body, `alt="Couple photo 2"`)
	assert.Contains(t, body, "The Sharmas")
	assert.Contains(t, body, `action="/i/`+ts.guest.Token+`/accept"`)
	assert.NotContains(t, body, "Enter Invitation")

	// a second enter keeps the invitation view
	_, body = ts.post(t, ts.page()+"/enter", nil)
	assert.Contains(t, body, "Celebration Events")

	guest, err := ts.store.GetGuest(context.Background(), ts.guest.Token)
	require.NoError(t, err)
	assert.False(t, guest.ViewedDate.IsZero())
	assert.Equal(t, models.RSVPPending, guest.Status())
}

func TestTouchDeviceGetsTouchGlitter(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.post(t, ts.page()+"/enter", nil)

	req, err := http.NewRequest(http.MethodGet, ts.server.URL+ts.page(), nil)
	require.NoError(t, err)
	req.Header.Set("Sec-CH-UA-Mobile", "?1")
	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `data-effect="touch-glitter"`)
}

func TestFamilyDisclosure(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.post(t, ts.page()+"/enter", nil)

	status, body := ts.post(t, ts.page()+"/family/bride", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<dialog class="family-dialog" open>`)
	assert.Contains(t, body, "Meera")

	status, body = ts.post(t, ts.page()+"/family/close", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<dialog class="family-dialog">`)
	assert.Contains(t, body, "Meera", "selection survives closing")

	status, _ = ts.post(t, ts.page()+"/family/groom", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAcceptInvitation(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.post(t, ts.page()+"/enter", nil)

	status, body := ts.post(t, ts.page()+"/accept", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Invitation Accepted!")
	assert.Contains(t, body, `data-celebrate="true"`)

	status, body = ts.post(t, ts.page()+"/accept", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Thank you for accepting our invitation!")
	assert.NotContains(t, body, `data-celebrate="true"`)

	assert.Len(t, ts.notifier.messages, 1, "accept callback runs once")

	guest, err := ts.store.GetGuest(context.Background(), ts.guest.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RSVPAccepted, guest.Status())
	assert.Contains(t, body, `data-status="accepted"`)
}

func TestLocalAcceptanceNotHydrated(t *testing.T) {
	ts := setupTestServer(t, nil)
	require.NoError(t, ts.store.RecordResponse(context.Background(), ts.guest.Token, true, nil))

	ts.post(t, ts.page()+"/enter", nil)
	_, body := ts.get(t, ts.page())
	assert.Contains(t, body, `data-status="accepted"`)
	assert.Contains(t, body, "Accept Invitation")
	assert.NotContains(t, body, "Invitation Accepted!")
}

func TestSessionsAreIndependent(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.post(t, ts.page()+"/enter", nil)

	other := &http.Client{}
	resp, err := other.Get(ts.server.URL + ts.page())
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Enter Invitation")
}

func TestUnknownSessionCookieIsReplaced(t *testing.T) {
	ts := setupTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, ts.server.URL+ts.page(), nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "chosen-by-client"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var issued string
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			issued = c.Value
		}
	}
	assert.NotEmpty(t, issued)
	assert.NotEqual(t, "chosen-by-client", issued)
}

func TestBackgroundMusicOnBothScreens(t *testing.T) {
	rsvpHandler, store := newTestRSVPHandler(t, &fakeNotifier{})
	guest, err := rsvpHandler.SendInvitation(context.Background(), "", "Asha", "")
	require.NoError(t, err)

	details := testDetails()
	details.BackgroundMusic = "/media/shehnai.mp3"
	sessions := invitation.NewSessions(time.Hour, invitation.GlitterEffects(zerolog.Nop()), zerolog.Nop())
	h, err := NewInvitationHandler(rsvpHandler, store, &eventdetails.Document{Details: details}, sessions, zerolog.Nop())
	require.NoError(t, err)
	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	ts := &testServer{server: server, client: &http.Client{Jar: jar}, store: store, guest: guest}

	_, body := ts.get(t, ts.page())
	assert.Contains(t, body, "Enter Invitation")
	assert.Contains(t, body, `data-audio="/media/shehnai.mp3"`)
	assert.Contains(t, body, `<audio id="background-music" src="/media/shehnai.mp3"`)

	_, body = ts.post(t, ts.page()+"/enter", nil)
	assert.Contains(t, body, "Celebration Events")
	assert.Contains(t, body, `data-audio="/media/shehnai.mp3"`)
	assert.Contains(t, body, "data-audio-toggle")
}

func TestRSVPCustomFields(t *testing.T) {
	ts := setupTestServer(t, &models.RSVPConfig{
		Type:            models.RSVPTypeForm,
		HasCustomFields: true,
		CustomFields: []models.CustomField{
			{Name: "meal", Label: "Meal preference", Required: true},
			{Name: "song", Label: "Song request"},
		},
	})
	ts.post(t, ts.page()+"/enter", nil)

	_, body := ts.get(t, ts.page())
	assert.Contains(t, body, `name="meal"`)

	status, body := ts.post(t, ts.page()+"/rsvp", url.Values{"song": {"Tum Hi Ho"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "Meal preference is required")

	status, body = ts.post(t, ts.page()+"/rsvp", url.Values{"meal": {"veg"}, "other": {"ignored"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `data-status="accepted"`)
	assert.Contains(t, body, "Accept Invitation", "RSVP section does not flip the local accept flag")

	guest, err := ts.store.GetGuest(context.Background(), ts.guest.Token)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"meal": "veg"}, guest.CustomFields)

	status, _ = ts.post(t, ts.page()+"/rsvp/edit", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSimpleRSVP(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.post(t, ts.page()+"/enter", nil)

	status, body := ts.post(t, ts.page()+"/rsvp", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, `data-status="accepted"`))
}

func TestMethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t, nil)
	status, _ := ts.get(t, ts.page()+"/accept")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}
