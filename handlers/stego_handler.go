// Package handlers is made to handle requests
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"image-steganography-backend/crypto"
	"image-steganography-backend/imaging"
	"image-steganography-backend/models"
	"image-steganography-backend/storage"
	"image-steganography-backend/stego"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// Settings are the request limits applied by StegoHandler.
type Settings struct {
	MaxUploadBytes    int64
	MinPasswordLength int
	MaxPixels         int
	// MinPSNR is the quality below which an embedding is logged as visible.
	MinPSNR float64
}

type StegoHandler struct {
	imageDecoder      *imaging.ImageDecoder
	store             *storage.Store
	log               logrus.FieldLogger
	maxUploadBytes    int64
	minPasswordLength int
	minPSNR           float64
}

func NewStegoHandler(store *storage.Store, log logrus.FieldLogger, settings Settings) *StegoHandler {
	return &StegoHandler{
		imageDecoder:      imaging.NewImageDecoder(imaging.WithMaxPixels(settings.MaxPixels)),
		store:             store,
		log:               log,
		maxUploadBytes:    settings.MaxUploadBytes,
		minPasswordLength: settings.MinPasswordLength,
		minPSNR:           settings.MinPSNR,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "1.0.0",
	})
}

func (h *StegoHandler) EncodeMessage(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	message := strings.TrimSpace(c.PostForm("message"))
	password := strings.TrimSpace(c.PostForm("password"))

	imageFile, imageHeader, err := c.Request.FormFile("image")
	if err != nil {
		h.encodeFailure(c, http.StatusBadRequest, "No image file provided")
		return
	}
	defer imageFile.Close()

	if imageHeader.Filename == "" {
		h.encodeFailure(c, http.StatusBadRequest, "Please select an image file")
		return
	}

	if message == "" {
		h.encodeFailure(c, http.StatusBadRequest, "Please enter a message to hide")
		return
	}

	if err := crypto.ValidatePassword(password, h.minPasswordLength); err != nil {
		msg := fmt.Sprintf("Password must be at least %d characters long", h.minPasswordLength)
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			msg = fmt.Sprintf("Invalid password: %v", err)
		}
		h.encodeFailure(c, http.StatusBadRequest, msg)
		return
	}

	if !isValidImageFile(imageHeader.Filename) {
		h.encodeFailure(c, http.StatusBadRequest, "Please upload a valid image file (PNG, JPG, BMP, GIF)")
		return
	}

	imageData, err := io.ReadAll(imageFile)
	if err != nil {
		h.encodeFailure(c, http.StatusInternalServerError, fmt.Sprintf("Failed to read image file: %v", err))
		return
	}

	pixels, metadata, err := h.imageDecoder.Decode(imageData)
	if err != nil {
		h.encodeFailure(c, http.StatusBadRequest, fmt.Sprintf("Encoding failed: %v", err))
		return
	}

	stegoPixels, err := stego.Encode(pixels, message, password)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"width":  metadata.Width,
			"height": metadata.Height,
			"error":  err,
		}).Info("encode rejected")
		h.encodeFailure(c, http.StatusBadRequest, fmt.Sprintf("Encoding failed: %v", err))
		return
	}

	var out bytes.Buffer
	if err := h.imageDecoder.EncodePNG(&out, stegoPixels, metadata); err != nil {
		h.encodeFailure(c, http.StatusInternalServerError, fmt.Sprintf("Encoding failed: %v", err))
		return
	}

	filename, err := h.store.Save(out.Bytes())
	if err != nil {
		h.encodeFailure(c, http.StatusInternalServerError, fmt.Sprintf("Encoding failed: %v", err))
		return
	}

	psnr := imaging.CalculatePSNR(pixels, stegoPixels)
	entry := h.log.WithFields(logrus.Fields{
		"filename": filename,
		"format":   metadata.Format,
		"pixels":   metadata.PixelCount(),
		"bits":     stego.RequiredBits(message, password),
		"psnr":     psnr,
	})
	if !imaging.ValidatePSNR(psnr, h.minPSNR) {
		entry.WithField("min_psnr", h.minPSNR).Warn("embedding quality below threshold")
	}
	entry.Info("message embedded")

	resp := models.EncodeResponse{
		Success:  true,
		Filename: filename,
		Message:  fmt.Sprintf("Message successfully hidden in %s", filename),
		Capacity: stego.Capacity(metadata.PixelCount()),
	}
	// JSON has no infinity
	if !math.IsInf(psnr, 1) {
		resp.PSNR = psnr
	}

	c.Header("X-Stego-PSNR", fmt.Sprintf("%.2f", psnr))
	c.JSON(http.StatusOK, resp)
}

func (h *StegoHandler) DecodeMessage(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	password := strings.TrimSpace(c.PostForm("password"))

	imageFile, imageHeader, err := c.Request.FormFile("image")
	if err != nil {
		h.decodeFailure(c, http.StatusBadRequest, "No image file provided")
		return
	}
	defer imageFile.Close()

	if imageHeader.Filename == "" {
		h.decodeFailure(c, http.StatusBadRequest, "Please select a steganographic image")
		return
	}

	if password == "" {
		h.decodeFailure(c, http.StatusBadRequest, "Please enter the decryption password")
		return
	}

	imageData, err := io.ReadAll(imageFile)
	if err != nil {
		h.decodeFailure(c, http.StatusInternalServerError, fmt.Sprintf("Failed to read image file: %v", err))
		return
	}

	pixels, _, err := h.imageDecoder.Decode(imageData)
	if err != nil {
		h.decodeFailure(c, http.StatusBadRequest, fmt.Sprintf("Decoding failed: %v", err))
		return
	}

	message, ok := stego.Decode(pixels, password)
	if !ok || message == "" {
		h.decodeFailure(c, http.StatusOK, "Wrong password or no hidden message found in this image")
		return
	}

	c.JSON(http.StatusOK, models.DecodeResponse{
		Success: true,
		Message: message,
		Info:    fmt.Sprintf("Successfully extracted %d character message", len([]rune(message))),
	})
}

func (h *StegoHandler) Download(c *gin.Context) {
	filename := c.Param("filename")

	path, err := h.store.Path(filename)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	case errors.Is(err, storage.ErrAccessDenied):
		h.log.WithField("filename", filename).Warn("download outside temp dir refused")
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Download failed: %v", err)})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// parseForm enforces the upload limit before the multipart body is read.
func (h *StegoHandler) parseForm(c *gin.Context) bool {
	if c.Request.ContentLength > h.maxUploadBytes {
		h.tooLarge(c)
		return false
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.tooLarge(c)
			return false
		}
		if errors.Is(err, http.ErrNotMultipart) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   "No image file provided",
			})
			return false
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   fmt.Sprintf("Failed to parse form: %v", err),
		})
		return false
	}
	return true
}

func (h *StegoHandler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
		Success: false,
		Error:   fmt.Sprintf("File too large. Maximum size is %s.", humanize.IBytes(uint64(h.maxUploadBytes))),
	})
}

func (h *StegoHandler) encodeFailure(c *gin.Context, status int, msg string) {
	c.JSON(status, models.EncodeResponse{Success: false, Error: msg})
}

func (h *StegoHandler) decodeFailure(c *gin.Context, status int, msg string) {
	c.JSON(status, models.DecodeResponse{Success: false, Error: msg})
}

func isValidImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedExtensions[ext]
}
