package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"image-steganography-backend/models"
	"image-steganography-backend/stego"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x + y), A: 0xff})
		}
	}
	return img
}

func TestDetectFormat(t *testing.T) {
	cases := map[string][]byte{
		FormatPNG:  []byte("\x89PNG\r\n\x1a\nrest"),
		FormatJPEG: {0xff, 0xd8, 0xff, 0xe0},
		FormatGIF:  []byte("GIF89a..."),
		FormatBMP:  []byte("BM...."),
	}
	for want, data := range cases {
		got, err := DetectFormat(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := DetectFormat([]byte("RIFF....WEBP"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = DetectFormat(nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPNGRoundTripKeepsHiddenMessage(t *testing.T) {
	d := NewImageDecoder()

	var cover bytes.Buffer
	require.NoError(t, d.EncodePNG(&cover, pixelsOf(gradient(20, 15)), &models.ImageMetadata{Width: 20, Height: 15}))

	pixels, metadata, err := d.Decode(cover.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, metadata.Format)
	assert.Equal(t, 20, metadata.Width)
	assert.Equal(t, 15, metadata.Height)
	assert.Len(t, pixels, 300)

	encoded, err := stego.Encode(pixels, "png keeps bits", "pass")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, d.EncodePNG(&out, encoded, metadata))

	reloaded, _, err := d.Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, encoded, reloaded)

	msg, ok := stego.Decode(reloaded, "pass")
	require.True(t, ok)
	assert.Equal(t, "png keeps bits", msg)
}

func TestDecodeDropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 10})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	pixels, _, err := NewImageDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, stego.Pixel{R: 200, G: 100, B: 50}, pixels[0])
}

func TestDecodeBMP(t *testing.T) {
	src := gradient(6, 5)

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	pixels, metadata, err := NewImageDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatBMP, metadata.Format)
	assert.Equal(t, pixelsOf(src), pixels)
}

func TestDecodeOtherContainers(t *testing.T) {
	src := gradient(8, 4)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, src, &jpeg.Options{Quality: 90}))
	pixels, metadata, err := NewImageDecoder().Decode(jpg.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, metadata.Format)
	assert.Len(t, pixels, 32)

	var g bytes.Buffer
	require.NoError(t, gif.Encode(&g, src, nil))
	pixels, metadata, err = NewImageDecoder().Decode(g.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatGIF, metadata.Format)
	assert.Len(t, pixels, 32)
}

func TestDecodeCorruptImage(t *testing.T) {
	_, _, err := NewImageDecoder().Decode([]byte("\x89PNG\r\n\x1a\ngarbage"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode png image")
}

// pngHeaderOnly builds a PNG whose IHDR claims w x h but carries no pixel data.
func pngHeaderOnly(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(kind string, data []byte) {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(data)))
		buf.Write(length[:])
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(data)
		buf.WriteString(kind)
		buf.Write(data)
		var sum [4]byte
		binary.BigEndian.PutUint32(sum[:], crc.Sum32())
		buf.Write(sum[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestDecodeRejectsOversizedDimensions(t *testing.T) {
	_, _, err := NewImageDecoder().Decode(pngHeaderOnly(40000, 40000))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Contains(t, err.Error(), "40000x40000")

	_, _, err = NewImageDecoder(WithMaxPixels(100)).Decode(mustPNG(t, gradient(11, 10)))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	pixels, _, err := NewImageDecoder(WithMaxPixels(110)).Decode(mustPNG(t, gradient(11, 10)))
	require.NoError(t, err)
	assert.Len(t, pixels, 110)
}

func mustPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEncodePNGRejectsMismatchedSize(t *testing.T) {
	err := NewImageDecoder().EncodePNG(&bytes.Buffer{}, make(stego.PixelBuffer, 5), &models.ImageMetadata{Width: 2, Height: 2})
	assert.Error(t, err)
}

func TestCalculatePSNR(t *testing.T) {
	a := pixelsOf(gradient(20, 20))
	assert.True(t, math.IsInf(CalculatePSNR(a, a.Clone()), 1))
	assert.Equal(t, 0.0, CalculatePSNR(a, a[:5]))
	assert.Equal(t, 0.0, CalculatePSNR(nil, nil))

	b, err := stego.Encode(a, "psnr", "pass")
	require.NoError(t, err)
	psnr := CalculatePSNR(a, b)
	assert.Greater(t, psnr, 50.0)
	assert.True(t, ValidatePSNR(psnr, 40))
	assert.False(t, ValidatePSNR(psnr, 1000))
}

func pixelsOf(img *image.NRGBA) stego.PixelBuffer {
	b := img.Bounds()
	out := make(stego.PixelBuffer, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			out = append(out, stego.Pixel{R: c.R, G: c.G, B: c.B})
		}
	}
	return out
}
