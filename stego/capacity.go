package stego

import (
	"errors"
	"fmt"
)

var ErrImageTooSmall = errors.New("image too small to hold the message")

// CapacityError reports a payload that does not fit into the pixel buffer.
type CapacityError struct {
	Bits   int
	Pixels int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: need %d pixels, image has %d", ErrImageTooSmall, e.Bits, e.Pixels)
}

func (e *CapacityError) Unwrap() error {
	return ErrImageTooSmall
}

// CheckCapacity fails when bitCount exceeds pixelCount; one pixel carries one bit.
func CheckCapacity(bitCount, pixelCount int) error {
	if bitCount > pixelCount {
		return &CapacityError{Bits: bitCount, Pixels: pixelCount}
	}
	return nil
}

// Capacity returns the longest message, in characters, that fits into
// pixelCount pixels once framed and terminated.
func Capacity(pixelCount int) int {
	overhead := (SignatureLength+len(EndMarker))*BitsInByte + len(Sentinel)
	capacity := (pixelCount - overhead) / BitsInByte
	if capacity < 0 {
		return 0
	}
	return capacity
}
