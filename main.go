package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"image-steganography-backend/config"
	"image-steganography-backend/handlers"
	"image-steganography-backend/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.SetLevel(cfg.Level())
	if cfg.Level() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewStore(cfg.TempDir)
	if err != nil {
		log.Fatalf("Failed to prepare temp dir: %v", err)
	}

	go expireOutputs(store, cfg.OutputTTL(), log)

	stegoHandler := handlers.NewStegoHandler(store, log, handlers.Settings{
		MaxUploadBytes:    cfg.MaxUploadBytes,
		MinPasswordLength: cfg.MinPasswordLength,
		MaxPixels:         cfg.MaxPixels,
		MinPSNR:           cfg.MinPSNR,
	})
	router := handlers.NewRouter(stegoHandler, cfg.AllowedOrigins)

	log.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"temp_dir": store.Dir(),
		"origins":  cfg.AllowedOrigins,
	}).Info("Server starting")
	log.Info("API endpoints:")
	log.Info("  POST /encode              - Hide a password-signed message in an image (PNG output)")
	log.Info("  POST /decode              - Extract a hidden message with its password")
	log.Info("  GET  /download/:filename  - Download an encoded image")
	log.Info("  GET  /api/v1/health       - Health check")

	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// expireOutputs drops encoded images nobody downloaded within ttl.
func expireOutputs(store *storage.Store, ttl time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := store.Expire(ttl)
		if err != nil {
			log.WithError(err).Warn("temp output cleanup failed")
		}
		if len(removed) > 0 {
			log.WithField("count", len(removed)).Debug("expired temp outputs")
		}
	}
}
