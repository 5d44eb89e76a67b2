package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/eventdetails"
	"wedding-invitation/internal/invitation"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const sessionCookie = "invitation_session"

var funcMap = template.FuncMap{
	"iso": func(t time.Time) string { return t.Format(time.RFC3339) },
}

// InvitationHandler serves guests' invitation pages
type InvitationHandler struct {
	rsvp      *RSVPHandler
	storage   storage.Storage
	doc       *eventdetails.Document
	display   invitation.Display
	sessions  *invitation.Sessions
	templates *template.Template
	log       zerolog.Logger
}

// pageData is what the welcome and invitation templates render
type pageData struct {
	Token     string
	GuestName string
	Display   invitation.Display
	State     invitation.State
	RSVP      invitation.RSVPSection
	Answers   map[string]string
}

// NewInvitationHandler parses the page templates and derives the display
// data shared by every guest.
func NewInvitationHandler(rsvp *RSVPHandler, storage storage.Storage, doc *eventdetails.Document, sessions *invitation.Sessions, log zerolog.Logger) (*InvitationHandler, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &InvitationHandler{
		rsvp:      rsvp,
		storage:   storage,
		doc:       doc,
		display:   invitation.Derive(doc.Details),
		sessions:  sessions,
		templates: tmpl,
		log:       log.With().Str("component", "HTTP").Logger(),
	}, nil
}

// Routes returns the HTTP routes of the invitation site
func (h *InvitationHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	mux.Handle("GET /static/", http.FileServerFS(staticFS))

	mux.HandleFunc("GET /i/{token}", h.page)
	mux.HandleFunc("POST /i/{token}/enter", h.enter)
	mux.HandleFunc("POST /i/{token}/family/close", h.closeFamily)
	mux.HandleFunc("POST /i/{token}/family/{side}", h.selectFamily)
	mux.HandleFunc("POST /i/{token}/accept", h.accept)
	mux.HandleFunc("POST /i/{token}/rsvp", h.submitRSVP)
	mux.HandleFunc("POST /i/{token}/rsvp/edit", h.requestEdit)

	return h.logRequests(mux)
}

func (h *InvitationHandler) page(w http.ResponseWriter, r *http.Request) {
	sess, guest, ok := h.session(w, r)
	if !ok {
		return
	}

	state := sess.Render(invitation.DetectCapability(r.Header.Get("Sec-CH-UA-Mobile"), r.UserAgent()))
	if state.View == invitation.ViewInvitation && guest.ViewedDate.IsZero() {
		if err := h.storage.MarkViewed(r.Context(), guest.Token); err != nil {
			h.log.Error().Err(err).Str("token", guest.Token).Msg("Error marking invitation viewed")
		}
	}

	props := invitation.Props{
		EventDetails: h.doc.Details,
		GuestName:    guest.Name,
		OnAccept:     h.rsvp.OnAccept(guest.Token, nil),
		HasResponded: guest.HasResponded,
		Accepted:     guest.Accepted,
		RSVPConfig:   h.doc.RSVP,
	}

	w.Header().Set("Accept-CH", "Sec-CH-UA-Mobile")
	h.render(w, http.StatusOK, string(state.View), pageData{
		Token:     guest.Token,
		GuestName: guest.Name,
		Display:   h.display,
		State:     state,
		RSVP:      props.RSVP(),
		Answers:   guest.CustomFields,
	})
}

func (h *InvitationHandler) enter(w http.ResponseWriter, r *http.Request) {
	sess, guest, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Enter()
	h.backToPage(w, r, guest.Token, "")
}

func (h *InvitationHandler) selectFamily(w http.ResponseWriter, r *http.Request) {
	sess, guest, ok := h.session(w, r)
	if !ok {
		return
	}

	family, found := h.display.Family(invitation.Side(r.PathValue("side")))
	if !found {
		h.notFound(w)
		return
	}
	sess.SelectFamily(family)
	h.backToPage(w, r, guest.Token, "")
}

func (h *InvitationHandler) closeFamily(w http.ResponseWriter, r *http.Request) {
	sess, guest, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.SetDisclosureOpen(false)
	h.backToPage(w, r, guest.Token, "")
}

func (h *InvitationHandler) accept(w http.ResponseWriter, r *http.Request) {
	sess, guest, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Accept()
	h.backToPage(w, r, guest.Token, "accept")
}

func (h *InvitationHandler) submitRSVP(w http.ResponseWriter, r *http.Request) {
	_, guest, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form data", http.StatusBadRequest)
		return
	}

	section := invitation.Props{RSVPConfig: h.doc.RSVP}.RSVP()
	var fields map[string]string
	if section.HasCustomFields {
		fields = make(map[string]string, len(section.Config.CustomFields))
		for _, f := range section.Config.CustomFields {
			v := r.FormValue(f.Name)
			if f.Required && v == "" {
				http.Error(w, fmt.Sprintf("%s is required", f.Label), http.StatusBadRequest)
				return
			}
			if v != "" {
				fields[f.Name] = v
			}
		}
	}

	section = invitation.Props{
		OnAccept:   h.rsvp.OnAccept(guest.Token, fields),
		RSVPConfig: h.doc.RSVP,
	}.RSVP()
	if section.HasCustomFields {
		section.OnSubmitCustomFields()
	} else {
		section.OnAccept()
	}
	h.backToPage(w, r, guest.Token, "rsvp")
}

func (h *InvitationHandler) requestEdit(w http.ResponseWriter, r *http.Request) {
	_, guest, ok := h.session(w, r)
	if !ok {
		return
	}
	invitation.Props{}.RSVP().OnRequestEdit()
	h.backToPage(w, r, guest.Token, "rsvp")
}

// session resolves the guest from the path and the session from the cookie,
// issuing a new session cookie when needed. It writes the error response
// itself and reports false when the request cannot continue.
func (h *InvitationHandler) session(w http.ResponseWriter, r *http.Request) (*invitation.Session, *models.Guest, bool) {
	token := r.PathValue("token")
	guest, err := h.storage.GetGuest(r.Context(), token)
	if errors.Is(err, storage.ErrGuestNotFound) {
		h.notFound(w)
		return nil, nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("token", token).Msg("Error loading guest")
		http.Error(w, "Failed to load invitation. Please try again.", http.StatusInternalServerError)
		return nil, nil, false
	}

	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess := h.sessions.Get(id, token, h.rsvp.OnAccept(token, nil))
	if sess.ID() != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, guest, true
}

func (h *InvitationHandler) backToPage(w http.ResponseWriter, r *http.Request, token, anchor string) {
	target := "/i/" + token
	if anchor != "" {
		target += "#" + anchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *InvitationHandler) notFound(w http.ResponseWriter) {
	h.render(w, http.StatusNotFound, "not_found", nil)
}

// render executes into a buffer first so a template error still yields a
// clean 500 instead of a half-written page.
func (h *InvitationHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("Error executing template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *InvitationHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
