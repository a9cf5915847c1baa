// Package dialog owns the text state of one IME dialog session: the
// caller-supplied native UTF-16 buffer, its UTF-8 projection for the
// display layer, and the filter callbacks that gate edits.
//
// All operations are synchronous and run on whichever goroutine drives
// the dialog's render/update step; the display layer is responsible for
// serializing calls. A State is move-only: it holds the two conversion
// contexts and must be released with Close exactly once.
package dialog

import (
	"errors"
	"fmt"
	"log/slog"

	"imeshim/internal/filter"
	"imeshim/internal/logging"
	"imeshim/internal/textcodec"
)

// MaxTextLenCap is the engine-wide hard cap on a dialog's maximum text
// length in native code units.
const MaxTextLenCap = 2048

// Type hints at the kind of input the dialog collects. Opaque to the
// engine; the display layer may use it to pick a keyboard variant.
type Type int32

const (
	TypeDefault Type = iota
	TypeBasicLatin
	TypeURL
	TypeMail
	TypeNumber
)

// EnterLabel hints at the label for the enter/confirm key. Opaque to the
// engine.
type EnterLabel int32

const (
	EnterDefault EnterLabel = iota
	EnterSend
	EnterSearch
	EnterGo
)

// ErrClosed is returned by operations on a released State.
var ErrClosed = errors.New("dialog state is closed")

// Config describes one dialog session. It is read-only to the engine;
// New takes its own copy of the title and placeholder.
type Config struct {
	UserID      int32
	MultiLine   bool
	Numeric     bool
	Type        Type
	EnterLabel  EnterLabel
	Title       string
	Placeholder string

	// MaxTextLen is the maximum text length in native code units.
	// Must be in 1..MaxTextLenCap.
	MaxTextLen int

	// TextFilter and KeyboardFilter are optional; absent means
	// accept unchanged.
	TextFilter     filter.TextFilter
	KeyboardFilter filter.KeyboardFilter

	// Logger defaults to the package logger when nil.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.MaxTextLen <= 0 || c.MaxTextLen > MaxTextLenCap {
		return fmt.Errorf("max text length must be in 1..%d, got %d", MaxTextLenCap, c.MaxTextLen)
	}
	return nil
}

// State is the text-state engine for one dialog session.
type State struct {
	cfg     Config
	codec   *textcodec.Codec
	gateway *filter.Gateway
	log     *slog.Logger

	// native is the caller-owned buffer. The engine writes at most
	// MaxTextLen code units plus the terminator into it.
	native []uint16

	// pending holds the accepted text between an edit and its flush to
	// the caller buffer.
	pending []uint16

	// scratch is the UTF-8 projection of the accepted text, sized
	// MaxTextLen*4+1 and NUL-terminated after every successful sync.
	scratch    []byte
	scratchLen int

	dirty  bool
	closed bool
}

// New constructs the engine over the caller-owned native buffer, which
// must hold at least MaxTextLen+1 code units. Text already present in
// the buffer (up to the first NUL) becomes the initial dialog text.
func New(cfg Config, native []uint16) (*State, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(native) < cfg.MaxTextLen+1 {
		return nil, fmt.Errorf("native buffer holds %d units, need at least %d", len(native), cfg.MaxTextLen+1)
	}

	codec, err := textcodec.New(cfg.MaxTextLen)
	if err != nil {
		return nil, err
	}

	text := cfg.TextFilter
	if cfg.Numeric {
		text = filter.Chain(filter.NumericOnly, cfg.TextFilter)
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}

	s := &State{
		cfg:     cfg,
		codec:   codec,
		gateway: filter.NewGateway(text, cfg.KeyboardFilter, cfg.MaxTextLen),
		log:     log,
		native:  native,
		scratch: make([]byte, cfg.MaxTextLen*textcodec.UTF8BytesPerUnit+1),
	}

	if err := s.SetFromNative(nativePrefix(native, cfg.MaxTextLen)); err != nil {
		codec.Close()
		return nil, fmt.Errorf("initial buffer text: %w", err)
	}
	return s, nil
}

// SetFromNative replaces the dialog text with native-encoded units,
// refreshing the UTF-8 projection and the caller buffer, and clears the
// dirty flag. On failure the prior state is untouched.
func (s *State) SetFromNative(units []uint16) error {
	if s.closed {
		return ErrClosed
	}
	if len(units) > s.cfg.MaxTextLen {
		return fmt.Errorf("%w: %d units, max %d", textcodec.ErrOutOfBounds, len(units), s.cfg.MaxTextLen)
	}

	u8, err := s.codec.ToUTF8(units)
	if err != nil {
		return err
	}

	s.install(units, u8)
	s.flush()
	return nil
}

// SetFromUTF8Edit applies an edited UTF-8 text from the display layer:
// converts it to native units, routes the candidate through the text
// filter, and on acceptance stores it as the pending text. A filter
// reject keeps the prior text and is not an error. The dirty flag is set
// iff the accepted text differs from the caller buffer contents.
func (s *State) SetFromUTF8Edit(text []byte) error {
	if s.closed {
		return ErrClosed
	}
	// Reserve one byte for the scratch terminator.
	if len(text) >= len(s.scratch) {
		return fmt.Errorf("%w: %d bytes, scratch capacity %d", textcodec.ErrOutOfBounds, len(text), len(s.scratch)-1)
	}

	units, err := s.codec.ToNative(text)
	if err != nil {
		return err
	}

	verdict := s.gateway.ApplyTextFilter(units)
	switch verdict.Action {
	case filter.ActionReject:
		s.log.Debug("text filter rejected edit", "units", len(units))
		return nil
	case filter.ActionRewrite:
		units = verdict.Rewrite
	}

	// Re-project the accepted units; a rewrite may differ from the edit,
	// and this validates whatever the filter returned.
	u8, err := s.codec.ToUTF8(units)
	if err != nil {
		return err
	}

	s.install(units, u8)
	s.dirty = !s.callerHolds(units)
	s.log.Debug("edit accepted",
		"units", len(units),
		"rewritten", verdict.Action == filter.ActionRewrite,
		"dirty", s.dirty)
	return nil
}

// CommitToCaller flushes the accepted text into the caller-owned buffer,
// zero-padding its remaining capacity, and clears the dirty flag. The
// conversion is re-run from the UTF-8 projection one last time.
// Committing an already-clean state rewrites identical units.
func (s *State) CommitToCaller() error {
	if s.closed {
		return ErrClosed
	}

	units, err := s.codec.ToNative(s.scratch[:s.scratchLen])
	if err != nil {
		return err
	}
	s.pending = append(s.pending[:0], units...)
	s.flush()
	s.log.Debug("committed to caller buffer", "units", len(units))
	return nil
}

// FilterKey routes one raw key event through the keyboard filter and
// returns its verdict verbatim. The display layer interprets the status;
// the engine does not.
func (s *State) FilterKey(key filter.Key) (uint16, filter.Status) {
	return s.gateway.ApplyKeyboardFilter(key)
}

// UTF8Text returns the current UTF-8 projection for rendering.
func (s *State) UTF8Text() string {
	return string(s.scratch[:s.scratchLen])
}

// NativeText returns a copy of the accepted native units.
func (s *State) NativeText() []uint16 {
	out := make([]uint16, len(s.pending))
	copy(out, s.pending)
	return out
}

// Dirty reports whether the accepted text diverges from the caller
// buffer contents.
func (s *State) Dirty() bool {
	return s.dirty
}

// Close releases both conversion contexts. The first call wins; later
// calls are no-ops.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.codec.Close()
}

// Display hint accessors.

func (s *State) UserID() int32 { return s.cfg.UserID }

func (s *State) MultiLine() bool { return s.cfg.MultiLine }

func (s *State) Numeric() bool { return s.cfg.Numeric }

func (s *State) DialogType() Type { return s.cfg.Type }

func (s *State) EnterLabel() EnterLabel { return s.cfg.EnterLabel }

func (s *State) Title() string { return s.cfg.Title }

func (s *State) Placeholder() string { return s.cfg.Placeholder }

func (s *State) MaxTextLen() int { return s.cfg.MaxTextLen }

// install stores the accepted units and their UTF-8 projection.
func (s *State) install(units []uint16, u8 []byte) {
	s.pending = append(s.pending[:0], units...)
	s.scratchLen = copy(s.scratch, u8)
	s.scratch[s.scratchLen] = 0
}

// flush writes the pending units into the caller buffer, zero-padding
// the remaining capacity, and marks the state clean.
func (s *State) flush() {
	n := copy(s.native, s.pending)
	for i := n; i < len(s.native); i++ {
		s.native[i] = 0
	}
	s.dirty = false
}

// callerHolds reports whether the caller buffer already contains exactly
// these units followed by a terminator.
func (s *State) callerHolds(units []uint16) bool {
	for i, u := range units {
		if s.native[i] != u {
			return false
		}
	}
	return s.native[len(units)] == 0
}

// nativePrefix returns the text already in the buffer: the units up to
// the first NUL, capped at max.
func nativePrefix(native []uint16, max int) []uint16 {
	n := 0
	for n < max && n < len(native) && native[n] != 0 {
		n++
	}
	return native[:n]
}
