package invitation

import (
	"strings"

	"github.com/rs/zerolog"
)

// Capability is the input style of the guest's device
type Capability string

const (
	CapabilityPointer Capability = "pointer"
	CapabilityTouch   Capability = "touch"
)

// Names of the ambient glitter effects shipped with the page
const (
	EffectCursorGlitter = "cursor-glitter"
	EffectTouchGlitter  = "touch-glitter"
)

// DetectCapability classifies a device from the Sec-CH-UA-Mobile client hint,
// falling back to the User-Agent when the hint is absent.
func DetectCapability(mobileHint, userAgent string) Capability {
	switch strings.TrimSpace(mobileHint) {
	case "?1":
		return CapabilityTouch
	case "?0":
		return CapabilityPointer
	}
	for _, marker := range []string{"Mobi", "Android", "iPhone", "iPad"} {
		if strings.Contains(userAgent, marker) {
			return CapabilityTouch
		}
	}
	return CapabilityPointer
}

// Effect is an ambient visual effect that stays attached until released
type Effect interface {
	Name() string
	Attach() (release func())
}

// EffectFactory returns the effect to use for a capability
type EffectFactory func(Capability) Effect

// GlitterEffects returns the default factory: touch glitter for touch
// devices and cursor glitter otherwise.
func GlitterEffects(log zerolog.Logger) EffectFactory {
	return func(c Capability) Effect {
		name := EffectCursorGlitter
		if c == CapabilityTouch {
			name = EffectTouchGlitter
		}
		return scriptEffect{name: name, log: log}
	}
}

// scriptEffect is attached by including its script in the rendered page
type scriptEffect struct {
	name string
	log  zerolog.Logger
}

func (e scriptEffect) Name() string { return e.name }

func (e scriptEffect) Attach() func() {
	e.log.Debug().Str("effect", e.name).Msg("effect attached")
	return func() {
		e.log.Debug().Str("effect", e.name).Msg("effect released")
	}
}

// EffectScope keeps exactly one ambient effect attached for the capability
// last seen. A capability change releases the old effect before the new one
// is attached. Release detaches whatever is attached.
type EffectScope struct {
	factory    EffectFactory
	capability Capability
	current    Effect
	release    func()
}

// NewEffectScope returns a scope with nothing attached
func NewEffectScope(factory EffectFactory) *EffectScope {
	return &EffectScope{factory: factory}
}

// Activate attaches the effect for c and returns its name
func (s *EffectScope) Activate(c Capability) string {
	if s.current != nil && s.capability == c {
		return s.current.Name()
	}
	s.Release()

	s.capability = c
	s.current = s.factory(c)
	s.release = s.current.Attach()
	return s.current.Name()
}

// Release detaches the current effect, if any
func (s *EffectScope) Release() {
	if s.release != nil {
		s.release()
	}
	s.current = nil
	s.release = nil
	s.capability = ""
}

// Current returns the name of the attached effect, or ""
func (s *EffectScope) Current() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name()
}
