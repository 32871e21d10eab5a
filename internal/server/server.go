package server

import (
	"crypto/tls"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/storage/redis/v3"

	"luxeleads/internal/config"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	// limiterStorage backs the capture rate limiter. nil keeps counters in memory.
	limiterStorage fiber.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		AppName: cfg.SiteTitle,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  message,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// CORS middleware
	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(corsOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", cfg.ActorHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	s := &Server{
		App: app,
		Cfg: cfg,
	}
	if cfg.RedisURL != "" {
		s.limiterStorage = redis.New(redis.Config{URL: cfg.RedisURL})
		log.Println("Capture rate limiter backed by Redis")
	}
	return s
}

// captureLimiter limits lead submissions per client IP.
func (s *Server) captureLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        s.Cfg.CaptureRateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return "capture:" + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Rate limit exceeded. Please try again later.",
			})
		},
		Storage: s.limiterStorage,
	})
}

// Start starts the server with the configured address and TLS settings.
func (s *Server) Start() error {
	if s.Cfg.IsTLSEnabled() {
		listenConfig := fiber.ListenConfig{
			CertFile:    s.Cfg.TLSCertFile,
			CertKeyFile: s.Cfg.TLSKeyFile,
			TLSConfigFunc: func(tc *tls.Config) {
				tc.MinVersion = tls.VersionTLS12
			},
		}
		log.Printf("Starting server with TLS on %s", s.Cfg.ServerAddr)
		return s.App.Listen(s.Cfg.ServerAddr, listenConfig)
	}
	log.Printf("Starting server on %s", s.Cfg.ServerAddr)
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: !s.Cfg.IsDev()})
}

// Shutdown gracefully shuts down the server and releases the limiter storage.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.App.ShutdownWithTimeout(timeout)
	if s.limiterStorage != nil {
		if cerr := s.limiterStorage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
