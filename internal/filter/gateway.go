// Package filter mediates the caller-supplied validation callbacks of an
// IME dialog session: a text filter that can veto or rewrite a whole
// candidate text, and a keyboard filter that can remap or veto a single
// key event.
//
// Both callbacks are optional. The Gateway centralizes the absent-case
// default (accept unchanged) so call sites never special-case a missing
// filter. Callbacks are synchronous and called exactly once per
// application; a callback that panics is a caller bug.
package filter

import "imeshim/internal/textcodec"

// Action is a text filter's decision for a candidate text.
type Action int

const (
	// ActionAccept keeps the candidate unchanged.
	ActionAccept Action = iota
	// ActionRewrite substitutes the filter's replacement text.
	ActionRewrite
	// ActionReject discards the edit; the prior committed text is kept.
	ActionReject
)

// TextVerdict is the outcome of applying a text filter.
type TextVerdict struct {
	Action  Action
	Rewrite []uint16 // replacement native units, set for ActionRewrite
}

// Accept returns the accept-unchanged verdict.
func Accept() TextVerdict {
	return TextVerdict{Action: ActionAccept}
}

// Reject returns the discard-this-edit verdict.
func Reject() TextVerdict {
	return TextVerdict{Action: ActionReject}
}

// RewriteTo returns a verdict substituting the given native units.
func RewriteTo(units []uint16) TextVerdict {
	return TextVerdict{Action: ActionRewrite, Rewrite: units}
}

// TextFilter validates or rewrites a whole candidate text, given as
// native code units.
type TextFilter func(candidate []uint16) TextVerdict

// Status is the keyboard filter's status word. The engine never branches
// on it beyond returning it to the display layer verbatim; only the two
// values the engine's own defaults need are named here.
type Status uint32

const (
	StatusAccept Status = 0
	StatusReject Status = 1
)

// Key is one raw key event as delivered by the display layer.
type Key struct {
	Code uint16 // native keycode
	Char rune   // character the key would produce, 0 if none
}

// KeyboardFilter validates or remaps a single key event, returning the
// keycode the display layer should apply and an opaque status.
type KeyboardFilter func(key Key) (uint16, Status)

// Gateway applies the configured filters, supplying accept-unchanged
// defaults when a filter is absent.
type Gateway struct {
	text     TextFilter
	keyboard KeyboardFilter
	maxUnits int
}

// NewGateway builds a gateway for the given callbacks; either or both
// may be nil. Rewrites are clamped to maxUnits native code units.
func NewGateway(text TextFilter, keyboard KeyboardFilter, maxUnits int) *Gateway {
	return &Gateway{text: text, keyboard: keyboard, maxUnits: maxUnits}
}

// ApplyTextFilter runs the text filter over the candidate. Without a
// configured filter the candidate is accepted unchanged. An oversized
// rewrite is clamped to the unit bound rather than rejected, so a
// misbehaving filter cannot destroy an in-progress edit.
func (g *Gateway) ApplyTextFilter(candidate []uint16) TextVerdict {
	if g.text == nil {
		return Accept()
	}
	v := g.text(candidate)
	if v.Action == ActionRewrite {
		v.Rewrite = ClampUnits(v.Rewrite, g.maxUnits)
	}
	return v
}

// ApplyKeyboardFilter runs the keyboard filter over one key event.
// Without a configured filter the keycode passes through unchanged with
// StatusAccept. A configured filter's keycode and status are returned
// verbatim.
func (g *Gateway) ApplyKeyboardFilter(key Key) (uint16, Status) {
	if g.keyboard == nil {
		return key.Code, StatusAccept
	}
	return g.keyboard(key)
}

// ClampUnits truncates units to at most max code units without splitting
// a surrogate pair.
func ClampUnits(units []uint16, max int) []uint16 {
	if max < 0 {
		max = 0
	}
	if len(units) <= max {
		return units
	}
	clamped := units[:max]
	if max > 0 && textcodec.IsHighSurrogate(clamped[max-1]) {
		clamped = clamped[:max-1]
	}
	return clamped
}

// Chain combines text filters into one that runs them in order. A reject
// short-circuits; a rewrite feeds the replacement to the next filter.
// Nil entries are skipped.
func Chain(filters ...TextFilter) TextFilter {
	return func(candidate []uint16) TextVerdict {
		rewritten := false
		for _, f := range filters {
			if f == nil {
				continue
			}
			switch v := f(candidate); v.Action {
			case ActionReject:
				return Reject()
			case ActionRewrite:
				candidate = v.Rewrite
				rewritten = true
			}
		}
		if rewritten {
			return RewriteTo(candidate)
		}
		return Accept()
	}
}

// NumericOnly is a built-in text filter for numeric dialogs: any unit
// outside the ASCII digits rejects the candidate.
func NumericOnly(candidate []uint16) TextVerdict {
	for _, u := range candidate {
		if u < '0' || u > '9' {
			return Reject()
		}
	}
	return Accept()
}
