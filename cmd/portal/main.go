package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"facultyportal/internal/config"
	"facultyportal/internal/portal"
	"facultyportal/internal/server"
	"facultyportal/internal/util"
	"facultyportal/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := portal.New(portal.Config{
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		SessionTTL:    sessionTTL,
		JWTSecret:     cfg.JWTSecret,
		Minio: storage.Config{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		},
	})
	if err != nil {
		log.Fatalf("failed to init portal: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                     appCore,
		RedisAddr:               cfg.RedisAddr,
		RedisPassword:           cfg.RedisPassword,
		LoginRateLimitPerMinute: cfg.LoginRateLimitPerMinute,
		MaxUploadBytes:          cfg.MaxUploadBytes,
		AllowedExtensions:       cfg.AllowedExtensions,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	if cfg.StartupDelayMillis > 0 {
		time.Sleep(time.Duration(cfg.StartupDelayMillis) * time.Millisecond)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
