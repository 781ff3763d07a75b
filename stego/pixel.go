// Package stego hides a password-signed text message in the red-channel
// least-significant bits of an RGB pixel buffer.
package stego

// Pixel is a single RGB sample. Only the lowest bit of R carries data.
type Pixel struct {
	R, G, B uint8
}

// PixelBuffer holds the pixels of an image in row-major order.
type PixelBuffer []Pixel

// Clone returns a copy that shares no memory with p.
func (p PixelBuffer) Clone() PixelBuffer {
	out := make(PixelBuffer, len(p))
	copy(out, p)
	return out
}

// RedBits returns the least-significant bit of every red channel, in order.
func (p PixelBuffer) RedBits() []byte {
	bits := make([]byte, len(p))
	for i, px := range p {
		bits[i] = px.R & 1
	}
	return bits
}
