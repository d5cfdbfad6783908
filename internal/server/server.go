// Package server contains the HTTP handlers for the campus CMS API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"campushub/internal/cache"
	"campushub/internal/config"
	"campushub/internal/database"
	"campushub/internal/middleware"
	"campushub/internal/models"
	"campushub/internal/repository"
	"campushub/internal/service"
	"campushub/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "campushub-api"
	tokenAudience = "campushub-client"
	tokenTTL      = 24 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	store          *storage.Local
	userRepo       repository.UserRepository
	workRepo       repository.WorkRepository
	studentRepo    repository.StudentRepository
	newsRepo       repository.NewsRepository
	programRepo    repository.ProgramRepository
	dashboardRepo  repository.DashboardRepository
	workService    *service.WorkService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with a sqlite database and a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	store := storage.NewLocal(cfg.StoragePath)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("campushub-api"),
		store:          store,
		userRepo:       repository.NewUserRepository(db),
		workRepo:       repository.NewWorkRepository(db),
		studentRepo:    repository.NewStudentRepository(db),
		newsRepo:       repository.NewNewsRepository(db),
		programRepo:    repository.NewProgramRepository(db),
		dashboardRepo:  repository.NewDashboardRepository(db),
	}
	s.workService = service.NewWorkService(s.workRepo, s.studentRepo, store)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth
	api.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	api.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Post("/logout", s.AuthRequired(), s.Logout)
	api.Get("/user", s.AuthRequired(), s.CurrentUser)

	admin := s.RoleRequired(models.RoleAdmin)

	// Karya mahasiswa. Specific segments are registered before the
	// /:slug and /:id catch-alls.
	karya := api.Group("/karya-mahasiswa")
	karya.Get("/", s.ListWorks)
	karya.Get("/meta/jenis", s.ListWorkJenis)
	karya.Get("/stats/approval", s.AuthRequired(), admin, s.WorkApprovalStats)
	karya.Get("/:id/download", s.DownloadWork)
	karya.Post("/", s.AuthRequired(), s.CreateWork)
	karya.Put("/:id/approve", s.AuthRequired(), admin, s.ApproveWork)
	karya.Put("/:id/reject", s.AuthRequired(), admin, s.RejectWork)
	karya.Put("/:id", s.AuthRequired(), s.UpdateWork)
	karya.Delete("/:id", s.AuthRequired(), s.DeleteWork)
	karya.Get("/:slug", s.GetWork)

	// Mahasiswa (admin)
	mhs := api.Group("/mahasiswa", s.AuthRequired(), admin)
	mhs.Get("/", s.ListStudents)
	mhs.Post("/", s.CreateStudent)
	mhs.Get("/:id", s.GetStudent)
	mhs.Put("/:id", s.UpdateStudent)
	mhs.Delete("/:id", s.DeleteStudent)

	// Prodi
	prodi := api.Group("/prodi")
	prodi.Get("/", s.ListPrograms)
	prodi.Get("/meta/dropdown", s.ProgramDropdown)
	prodi.Post("/", s.AuthRequired(), admin, s.CreateProgram)
	prodi.Put("/:id", s.AuthRequired(), admin, s.UpdateProgram)
	prodi.Delete("/:id", s.AuthRequired(), admin, s.DeleteProgram)
	prodi.Get("/:slug", s.GetProgram)

	// Berita
	berita := api.Group("/berita")
	berita.Get("/", s.ListNews)
	berita.Get("/latest", s.LatestNews)
	berita.Post("/", s.AuthRequired(), admin, s.CreateNews)
	berita.Put("/:id", s.AuthRequired(), admin, s.UpdateNews)
	berita.Delete("/:id", s.AuthRequired(), admin, s.DeleteNews)
	berita.Get("/:slug", s.GetNews)

	// Pengumuman
	pengumuman := api.Group("/pengumuman")
	pengumuman.Get("/", s.ListAnnouncements)
	pengumuman.Get("/active", s.ActiveAnnouncements)
	pengumuman.Post("/", s.AuthRequired(), admin, s.CreateAnnouncement)
	pengumuman.Put("/:id", s.AuthRequired(), admin, s.UpdateAnnouncement)
	pengumuman.Delete("/:id", s.AuthRequired(), admin, s.DeleteAnnouncement)
	pengumuman.Get("/:slug", s.GetAnnouncement)

	// Agenda
	agenda := api.Group("/agenda")
	agenda.Get("/", s.ListEvents)
	agenda.Get("/upcoming", s.UpcomingEvents)
	agenda.Get("/calendar", s.EventCalendar)
	agenda.Post("/", s.AuthRequired(), admin, s.CreateEvent)
	agenda.Put("/:id/toggle-publish", s.AuthRequired(), admin, s.ToggleEventPublish)
	agenda.Put("/:id", s.AuthRequired(), admin, s.UpdateEvent)
	agenda.Delete("/:id", s.AuthRequired(), admin, s.DeleteEvent)
	agenda.Get("/:slug", s.GetEvent)

	// Kerjasama
	kerjasama := api.Group("/kerjasama")
	kerjasama.Get("/", s.ListPartnerships)
	kerjasama.Get("/meta/jenis", s.ListPartnershipJenis)
	kerjasama.Get("/:id/download", s.DownloadPartnershipDocument)
	kerjasama.Post("/", s.AuthRequired(), admin, s.CreatePartnership)
	kerjasama.Put("/:id/toggle-active", s.AuthRequired(), admin, s.TogglePartnershipActive)
	kerjasama.Put("/:id", s.AuthRequired(), admin, s.UpdatePartnership)
	kerjasama.Delete("/:id", s.AuthRequired(), admin, s.DeletePartnership)
	kerjasama.Get("/:slug", s.GetPartnership)

	// Media library (admin)
	api.Post("/upload", s.AuthRequired(), admin, s.UploadMedia)
	media := api.Group("/media", s.AuthRequired(), admin)
	media.Get("/mediable/:kind/:id", s.ListMediaByOwner)
	media.Delete("/:id", s.DeleteMedia)

	// Campus profile
	api.Get("/profile", s.GetProfile)
	api.Put("/profile", s.AuthRequired(), admin, s.UpdateProfile)

	// Dashboard (admin)
	dashboard := api.Group("/dashboard", s.AuthRequired(), admin)
	dashboard.Get("/stats", s.DashboardStats)
	dashboard.Get("/summary", s.DashboardSummary)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API degrades without redis (no cache, no rate limits) but
		// stays functional, so a missing client is reported, not fatal.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the
// Bearer token, rejects revoked jtis, and stores the user ID in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthenticated"))
		}

		userID, ok := s.validateToken(c.Context(), tokenString)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthenticated"))
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RoleRequired returns middleware that rejects users lacking the role with
// 403. Admins pass every role check. Must run after AuthRequired.
func (s *Server) RoleRequired(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthenticated"))
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !user.HasRole(role) && !user.HasRole(models.RoleAdmin) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Forbidden"))
		}

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// validateToken parses and verifies a JWT, returning the subject user ID.
func (s *Server) validateToken(ctx context.Context, tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}

	if jti, _ := claims["jti"].(string); jti != "" {
		if cache.IsTokenBlacklisted(ctx, jti) {
			return 0, false
		}
	}

	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Campus CMS API",
		BodyLimit: int(s.config.MaxUploadBytes()) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
