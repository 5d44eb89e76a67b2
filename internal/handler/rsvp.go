package handler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-invitation/internal/invitation"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/whatsapp"
)

// Notifier delivers messages to guests
type Notifier interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
	SendInvitation(ctx context.Context, phoneNumber string, inv whatsapp.Invitation) error
}

// RSVPHandler records guest answers and keeps guests informed
type RSVPHandler struct {
	notifier Notifier
	storage  storage.Storage
	config   *Config
	log      zerolog.Logger
}

type Config struct {
	BaseURL string
	Details models.EventDetails
}

// NewRSVPHandler creates a new RSVP handler. notifier may be nil, in which
// case no messages are sent.
func NewRSVPHandler(notifier Notifier, storage storage.Storage, cfg *Config, log zerolog.Logger) *RSVPHandler {
	return &RSVPHandler{
		notifier: notifier,
		storage:  storage,
		config:   cfg,
		log:      log.With().Str("component", "RSVP").Logger(),
	}
}

// InvitationLink returns the URL of a guest's invitation page
func (h *RSVPHandler) InvitationLink(token string) string {
	return h.config.BaseURL + "/i/" + token
}

// Accept records that the guest accepted and sends a confirmation
func (h *RSVPHandler) Accept(ctx context.Context, token string, fields map[string]string) error {
	if err := h.storage.RecordResponse(ctx, token, true, fields); err != nil {
		return fmt.Errorf("failed to update RSVP: %w", err)
	}

	names := invitation.OrderNames(h.config.Details)
	return h.notify(ctx, token, fmt.Sprintf(
		"🎉 Wonderful! We're so excited to celebrate with you!\n\n"+
			"We've confirmed your attendance for the wedding of %s & %s on %s.\n\n"+
			"See you there! 💕",
		names.First, names.Second, h.config.Details.WeddingDate,
	))
}

// Decline records that the guest will not attend
func (h *RSVPHandler) Decline(ctx context.Context, token string) error {
	if err := h.storage.RecordResponse(ctx, token, false, nil); err != nil {
		return fmt.Errorf("failed to update RSVP: %w", err)
	}

	names := invitation.OrderNames(h.config.Details)
	return h.notify(ctx, token, fmt.Sprintf(
		"Thank you for letting us know. We're sorry you won't be able to join us for the wedding of %s & %s.\n\n"+
			"We'll miss you! 💕",
		names.First, names.Second,
	))
}

// OnAccept returns the accept callback of token's invitation page. It never
// reports failure to the caller; errors are logged.
func (h *RSVPHandler) OnAccept(token string, fields map[string]string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.Accept(ctx, token, fields); err != nil {
			h.log.Error().Err(err).Str("token", token).Msg("Error accepting invitation")
		}
	}
}

// SendInvitation adds the guest and, when a notifier is configured, sends
// them the link to their invitation.
func (h *RSVPHandler) SendInvitation(ctx context.Context, phoneNumber, name, notes string) (models.Guest, error) {
	guest, err := h.storage.AddGuest(ctx, models.Guest{
		PhoneNumber: whatsapp.NormalizePhoneNumber(phoneNumber),
		Name:        name,
		Notes:       notes,
	})
	if err != nil {
		return models.Guest{}, fmt.Errorf("failed to add guest: %w", err)
	}

	if h.notifier == nil || guest.PhoneNumber == "" {
		return guest, nil
	}

	names := invitation.OrderNames(h.config.Details)
	if err := h.notifier.SendInvitation(ctx, guest.PhoneNumber, whatsapp.Invitation{
		GuestName:   name,
		FirstName:   names.First,
		SecondName:  names.Second,
		WeddingDate: h.config.Details.WeddingDate,
		Link:        h.InvitationLink(guest.Token),
	}); err != nil {
		return guest, fmt.Errorf("failed to send invitation: %w", err)
	}
	return guest, nil
}

// HandleMessage processes incoming WhatsApp messages for RSVP responses
func (h *RSVPHandler) HandleMessage(msg *events.Message) error {
	if msg.Message == nil {
		return nil
	}
	text := msg.Message.GetConversation()
	if text == "" {
		return nil
	}

	phoneNumber := strings.Split(msg.Info.Sender.String(), "@")[0]
	return h.HandleReply(context.Background(), phoneNumber, text)
}

// HandleReply applies a free-text reply from phoneNumber. Replies from
// unknown numbers and replies that are not a clear yes or no are ignored.
func (h *RSVPHandler) HandleReply(ctx context.Context, phoneNumber, text string) error {
	phoneNumber = whatsapp.NormalizePhoneNumber(phoneNumber)

	guest, err := h.storage.GetGuestByPhone(ctx, phoneNumber)
	if errors.Is(err, storage.ErrGuestNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	switch classifyReply(text) {
	case replyAccept:
		return h.Accept(ctx, guest.Token, nil)
	case replyDecline:
		return h.Decline(ctx, guest.Token)
	default:
		return nil
	}
}

func (h *RSVPHandler) notify(ctx context.Context, token, message string) error {
	if h.notifier == nil {
		return nil
	}
	guest, err := h.storage.GetGuest(ctx, token)
	if err != nil {
		return err
	}
	if guest.PhoneNumber == "" {
		return nil
	}
	if err := h.notifier.SendMessage(ctx, guest.PhoneNumber, message); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

type reply int

const (
	replyUnknown reply = iota
	replyAccept
	replyDecline
)

// replyRules are tried in order. Negated phrases come before the accept
// keywords they contain ("not coming" contains "coming"). Phrases match
// anywhere in the text; words only match a whole word.
var replyRules = []struct {
	reply   reply
	phrases []string
	words   []string
}{
	{reply: replyDecline, phrases: []string{"not coming", "not attending", "can't come", "won't come", "can't make it", "decline", "❌"}},
	{reply: replyAccept, phrases: []string{"accept", "attending", "coming", "will come", "will be there", "✅"}, words: []string{"yes", "yep", "yeah"}},
	{reply: replyDecline, words: []string{"no", "nope"}},
}

func classifyReply(text string) reply {
	text = strings.ToLower(strings.TrimSpace(text))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, rule := range replyRules {
		if containsAny(text, rule.phrases...) || hasWord(words, rule.words...) {
			return rule.reply
		}
	}
	return replyUnknown
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func hasWord(words []string, keywords ...string) bool {
	for _, w := range words {
		if slices.Contains(keywords, w) {
			return true
		}
	}
	return false
}
