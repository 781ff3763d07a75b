package imaging

import (
	"math"

	"image-steganography-backend/stego"
)

// CalculatePSNR compares two pixel buffers over all three channels.
func CalculatePSNR(original, modified stego.PixelBuffer) float64 {
	if len(original) != len(modified) {
		return 0.0
	}

	if len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		dr := float64(original[i].R) - float64(modified[i].R)
		dg := float64(original[i].G) - float64(modified[i].G)
		db := float64(original[i].B) - float64(modified[i].B)
		mse += dr*dr + dg*dg + db*db
	}
	mse /= float64(len(original) * 3)

	// identical images
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX / sqrt(MSE)), MAX = 255 for 8-bit channels
	maxSignalValue := 255.0
	return 20 * math.Log10(maxSignalValue/math.Sqrt(mse))
}

// ValidatePSNR reports whether the embedding stays at or above threshold dB.
// Unchanged images (+Inf) always pass.
func ValidatePSNR(psnr, threshold float64) bool {
	return math.IsInf(psnr, 1) || psnr >= threshold
}
