// Package textcodec converts dialog text between the platform's native
// 16-bit representation (UTF-16, little-endian) and UTF-8.
//
// A Codec holds one conversion context per direction. The contexts are
// never shared across directions and are reset before every call, so a
// failed conversion does not poison later ones. Conversions are
// all-or-nothing: on error the destination is never observed in a
// half-written state.
package textcodec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Conversion errors.
var (
	// ErrInvalidSequence indicates malformed input: an unpaired surrogate
	// on the native side, or invalid UTF-8 on the byte side.
	ErrInvalidSequence = errors.New("invalid text sequence")

	// ErrTruncated indicates the converted text would not fit the
	// configured capacity. Nothing is written.
	ErrTruncated = errors.New("converted text exceeds capacity")

	// ErrOutOfBounds indicates the input itself exceeds the configured
	// maximum length.
	ErrOutOfBounds = errors.New("input exceeds configured maximum length")

	// ErrClosed is returned after Close has released the conversion
	// contexts.
	ErrClosed = errors.New("codec is closed")
)

// UTF8BytesPerUnit is the worst-case UTF-8 expansion per native code unit.
const UTF8BytesPerUnit = 4

// UTF-16 surrogate ranges.
const (
	surrHighMin = 0xD800
	surrHighMax = 0xDBFF
	surrLowMin  = 0xDC00
	surrLowMax  = 0xDFFF
)

// Codec converts between native UTF-16 code units and UTF-8, bounded to a
// fixed maximum of native code units in both directions.
type Codec struct {
	maxUnits int

	// One context per direction. Shared state across directions would
	// let a failed call in one direction corrupt the other.
	toUTF8   transform.Transformer
	toNative transform.Transformer
}

// New opens a codec bounded to maxUnits native code units.
func New(maxUnits int) (*Codec, error) {
	if maxUnits <= 0 {
		return nil, fmt.Errorf("max units must be positive, got %d", maxUnits)
	}

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	return &Codec{
		maxUnits: maxUnits,
		toUTF8:   utf16.NewDecoder(),
		// The raw UTF-16 encoder substitutes replacement characters for
		// malformed UTF-8; chaining the validator first turns that into
		// a hard error instead.
		toNative: transform.Chain(encoding.UTF8Validator, utf16.NewEncoder()),
	}, nil
}

// MaxUnits returns the configured native code-unit bound.
func (c *Codec) MaxUnits() int {
	return c.maxUnits
}

// ToUTF8 converts native code units to UTF-8 using the native-to-UTF-8
// context. The result is freshly allocated and at most
// MaxUnits*UTF8BytesPerUnit bytes.
func (c *Codec) ToUTF8(native []uint16) ([]byte, error) {
	if c.toUTF8 == nil {
		return nil, ErrClosed
	}
	if len(native) > c.maxUnits {
		return nil, fmt.Errorf("%w: %d units, max %d", ErrOutOfBounds, len(native), c.maxUnits)
	}
	if err := validateUnits(native); err != nil {
		return nil, err
	}

	src := make([]byte, len(native)*2)
	for i, u := range native {
		binary.LittleEndian.PutUint16(src[i*2:], u)
	}

	out, _, err := transform.Bytes(c.toUTF8, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSequence, err)
	}
	if len(out) > c.maxUnits*UTF8BytesPerUnit {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrTruncated, len(out), c.maxUnits*UTF8BytesPerUnit)
	}
	return out, nil
}

// ToNative converts UTF-8 bytes to native code units using the
// UTF-8-to-native context. Malformed UTF-8 yields ErrInvalidSequence; a
// result longer than MaxUnits code units yields ErrTruncated.
func (c *Codec) ToNative(text []byte) ([]uint16, error) {
	if c.toNative == nil {
		return nil, ErrClosed
	}
	if len(text) > c.maxUnits*UTF8BytesPerUnit {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrOutOfBounds, len(text), c.maxUnits*UTF8BytesPerUnit)
	}

	out, _, err := transform.Bytes(c.toNative, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSequence, err)
	}

	units := make([]uint16, len(out)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(out[i*2:])
	}
	if len(units) > c.maxUnits {
		return nil, fmt.Errorf("%w: %d units, max %d", ErrTruncated, len(units), c.maxUnits)
	}
	return units, nil
}

// Close releases both conversion contexts. Safe to call more than once;
// conversions after Close return ErrClosed.
func (c *Codec) Close() error {
	c.toUTF8 = nil
	c.toNative = nil
	return nil
}

// validateUnits rejects unpaired surrogates. The x/text UTF-16 decoder
// would silently substitute U+FFFD for them, which is indistinguishable
// from a legitimate replacement character in the input.
func validateUnits(units []uint16) error {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= surrHighMin && u <= surrHighMax:
			if i+1 >= len(units) || units[i+1] < surrLowMin || units[i+1] > surrLowMax {
				return fmt.Errorf("%w: unpaired high surrogate 0x%04X at unit %d", ErrInvalidSequence, u, i)
			}
			i++
		case u >= surrLowMin && u <= surrLowMax:
			return fmt.Errorf("%w: unpaired low surrogate 0x%04X at unit %d", ErrInvalidSequence, u, i)
		}
	}
	return nil
}

// IsHighSurrogate reports whether u is the leading half of a surrogate
// pair.
func IsHighSurrogate(u uint16) bool {
	return u >= surrHighMin && u <= surrHighMax
}
