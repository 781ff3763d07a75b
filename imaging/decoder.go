// Package imaging converts image containers to and from stego pixel buffers
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"

	"github.com/gen2brain/jpegn"
	"golang.org/x/image/bmp"

	"image-steganography-backend/models"
	"image-steganography-backend/stego"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
)

// DefaultMaxPixels matches the decompression-bomb limit of common imaging
// libraries (about 89.5 megapixels).
const DefaultMaxPixels = 1024 * 1024 * 1024 / 4 / 3

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image dimensions too large")
)

// DetectFormat sniffs the container from its magic bytes.
func DetectFormat(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF, nil
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP, nil
	}
	return "", ErrUnsupportedFormat
}

type ImageDecoder struct {
	maxPixels int
}

type DecoderOption func(*ImageDecoder)

// WithMaxPixels caps width*height of accepted images; n <= 0 keeps the default.
func WithMaxPixels(n int) DecoderOption {
	return func(d *ImageDecoder) {
		if n > 0 {
			d.maxPixels = n
		}
	}
}

func NewImageDecoder(opts ...DecoderOption) *ImageDecoder {
	d := &ImageDecoder{maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads any supported container into an RGB pixel buffer. Alpha is
// dropped without compositing.
func (d *ImageDecoder) Decode(data []byte) (stego.PixelBuffer, *models.ImageMetadata, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, nil, err
	}

	// The raster is allocated from the header dimensions, so check them first.
	cfg, err := decodeConfig(format, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, nil, fmt.Errorf("invalid %s image dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	if cfg.Width > d.maxPixels/cfg.Height {
		return nil, nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, d.maxPixels)
	}

	img, err := decodeContainer(format, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	bounds := img.Bounds()
	metadata := &models.ImageMetadata{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	pixels := make(stego.PixelBuffer, 0, metadata.PixelCount())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixels = append(pixels, stego.Pixel{R: c.R, G: c.G, B: c.B})
		}
	}

	return pixels, metadata, nil
}

func decodeConfig(format string, r io.Reader) (image.Config, error) {
	switch format {
	case FormatPNG:
		return png.DecodeConfig(r)
	case FormatJPEG:
		return jpegn.DecodeConfig(r)
	case FormatGIF:
		return gif.DecodeConfig(r)
	case FormatBMP:
		return bmp.DecodeConfig(r)
	}
	return image.Config{}, ErrUnsupportedFormat
}

func decodeContainer(format string, r io.Reader) (image.Image, error) {
	switch format {
	case FormatPNG:
		return png.Decode(r)
	case FormatJPEG:
		// EXIF orientation is ignored so pixel order matches the stored raster.
		return jpegn.Decode(r, &jpegn.Options{ToRGBA: true, UpsampleMethod: jpegn.CatmullRom})
	case FormatGIF:
		return gif.Decode(r)
	case FormatBMP:
		return bmp.Decode(r)
	}
	return nil, ErrUnsupportedFormat
}

// EncodePNG writes pixels as an opaque PNG. PNG is lossless, so the red-channel
// LSBs survive a round trip; re-saving as JPEG would destroy them.
func (d *ImageDecoder) EncodePNG(w io.Writer, pixels stego.PixelBuffer, metadata *models.ImageMetadata) error {
	if len(pixels) != metadata.PixelCount() {
		return fmt.Errorf("pixel count %d does not match %dx%d image", len(pixels), metadata.Width, metadata.Height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, metadata.Width, metadata.Height))
	for i, px := range pixels {
		img.SetNRGBA(i%metadata.Width, i/metadata.Width, color.NRGBA{R: px.R, G: px.G, B: px.B, A: 0xff})
	}

	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
