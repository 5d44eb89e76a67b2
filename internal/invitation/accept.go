package invitation

import "github.com/rs/zerolog"

// Acceptance is the one-shot "Accept Invitation" action. The first call to
// Accept fires the celebration and the accept callback; every later call is
// ignored. The local flag is never loaded from the guest's stored answer, so
// a guest who accepted earlier still sees the accept button in a new session.
type Acceptance struct {
	accepted  bool
	onAccept  func()
	celebrate func()
	log       zerolog.Logger
}

// NewAcceptance builds the workflow. Nil callbacks are treated as no-ops.
func NewAcceptance(onAccept, celebrate func(), log zerolog.Logger) *Acceptance {
	if onAccept == nil {
		onAccept = func() {}
	}
	if celebrate == nil {
		celebrate = func() {}
	}
	return &Acceptance{
		onAccept:  onAccept,
		celebrate: celebrate,
		log:       log,
	}
}

// Accept marks the invitation accepted
func (a *Acceptance) Accept() {
	a.log.Info().Msg("User manually clicked Accept Invitation")

	if a.accepted {
		a.log.Warn().Msg("Already accepted, ignoring duplicate click")
		return
	}

	a.accepted = true
	a.celebrate()
	a.onAccept()
	a.log.Info().Msg("Invitation accepted successfully")
}

// Accepted reports whether Accept has run
func (a *Acceptance) Accepted() bool {
	return a.accepted
}
