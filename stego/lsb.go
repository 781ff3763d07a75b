package stego

import (
	"fmt"
	"strings"
)

// Encode hides message in a copy of pixels. Only the red LSB of the first
// len(bits) pixels changes; green, blue and the remaining pixels are copied.
func Encode(pixels PixelBuffer, message, password string) (PixelBuffer, error) {
	bits, err := ToBits(Frame(message, password))
	if err != nil {
		return nil, fmt.Errorf("failed to pack message: %w", err)
	}

	if err := CheckCapacity(len(bits), len(pixels)); err != nil {
		return nil, err
	}

	out := pixels.Clone()
	for i, bit := range bits {
		out[i].R = (out[i].R & 0xFE) | bit
	}

	return out, nil
}

// Decode extracts the message hidden with password. It reports false when the
// image carries no message, the password is wrong, or the data is corrupted;
// the three cases are deliberately indistinguishable.
func Decode(pixels PixelBuffer, password string) (string, bool) {
	text := FromBits(pixels.RedBits(), 0)

	signature := BuildSignature(password)
	if !strings.HasPrefix(text, signature) || !strings.HasSuffix(text, EndMarker) {
		return "", false
	}
	if len(text) < len(signature)+len(EndMarker) {
		return "", false
	}

	return text[len(signature) : len(text)-len(EndMarker)], true
}
