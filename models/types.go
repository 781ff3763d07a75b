// Package models contain needed models
package models

// EncodeResponse represents the response after hiding a message
type EncodeResponse struct {
	Success  bool    `json:"success"`
	Filename string  `json:"filename,omitempty"`
	Message  string  `json:"message,omitempty"`
	PSNR     float64 `json:"psnr,omitempty"`
	Capacity int     `json:"capacity,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// DecodeResponse represents the response after extracting a message
type DecodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Info    string `json:"info,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is returned by routes that only report failures
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ImageMetadata represents metadata about a decoded cover image
type ImageMetadata struct {
	Format string
	Width  int
	Height int
}

// PixelCount is the number of pixels, one hidden bit each.
func (m *ImageMetadata) PixelCount() int {
	return m.Width * m.Height
}
