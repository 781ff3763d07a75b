package stego

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const BitsInByte = 8

// Sentinel trails every encoded bit stream. Decoding stops on EndMarker and
// never looks at it, but it is part of the stored format.
var Sentinel = []byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0}

var ErrUnsupportedCharacter = errors.New("unsupported character")

// charset maps characters to single bytes. Code points 0..255 map to
// themselves; anything above cannot be represented.
var charset = charmap.ISO8859_1

// ToBits packs text MSB-first, 8 bits per character, and appends Sentinel.
// Characters outside ISO-8859-1 are rejected.
func ToBits(text string) ([]byte, error) {
	bits := make([]byte, 0, utf8.RuneCountInString(text)*BitsInByte+len(Sentinel))
	pos := 0
	for _, r := range text {
		b, ok := charset.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q (U+%04X) at position %d", ErrUnsupportedCharacter, r, r, pos)
		}
		for i := BitsInByte - 1; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
		pos++
	}
	return append(bits, Sentinel...), nil
}

// FromBits reads characters 8 bits at a time until the text ends with
// EndMarker, fewer than 8 bits remain, or maxChars characters have been read
// (maxChars <= 0 means no limit). Bytes without a character mapping are
// skipped.
func FromBits(bits []byte, maxChars int) string {
	var sb strings.Builder
	count := 0
	for i := 0; i+BitsInByte <= len(bits); i += BitsInByte {
		var b byte
		for j := range BitsInByte {
			b = (b << 1) | (bits[i+j] & 1)
		}
		r := charset.DecodeByte(b)
		// ISO-8859-1 maps all 256 bytes, so this never fires with the current charset.
		if r == utf8.RuneError {
			continue
		}
		sb.WriteRune(r)
		count++
		if strings.HasSuffix(sb.String(), EndMarker) {
			break
		}
		if maxChars > 0 && count >= maxChars {
			break
		}
	}
	return sb.String()
}

// RequiredBits returns the bit count of the framed message, sentinel included.
func RequiredBits(message, password string) int {
	return utf8.RuneCountInString(Frame(message, password))*BitsInByte + len(Sentinel)
}
