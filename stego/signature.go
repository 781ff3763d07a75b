package stego

import (
	"image-steganography-backend/crypto"
)

const (
	SignaturePrefix = "STEGO:"
	EndMarker       = ":END"

	// SignatureLength is the length of every signature in characters.
	SignatureLength = len(SignaturePrefix) + crypto.FingerprintLength + 1
)

// BuildSignature returns "STEGO:" + fingerprint(password) + ":".
func BuildSignature(password string) string {
	return SignaturePrefix + crypto.Fingerprint(password) + ":"
}

// Frame wraps message with the password signature and the end marker.
func Frame(message, password string) string {
	return BuildSignature(password) + message + EndMarker
}
