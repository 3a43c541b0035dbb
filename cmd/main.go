package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paperarchive/internal/auth"
	"paperarchive/internal/config"
	"paperarchive/internal/handler"
	appmiddleware "paperarchive/internal/middleware"
	"paperarchive/internal/preview"
	"paperarchive/internal/repository"
	"paperarchive/internal/service"
	"paperarchive/internal/service/email"
	"paperarchive/internal/service/s3"
	"paperarchive/internal/service/storage"
)

func connectWithRetry(cfg *config.DatabaseConfig, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	// Connect to the system database first so the application database can
	// be created when it does not exist yet.
	dsn := cfg.GetDSN()
	pgDSN := strings.Replace(dsn, "dbname="+cfg.Name, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	if !exists {
		log.Printf("Database %s does not exist, creating...", cfg.Name)
		_, err = pgDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", cfg.Database.GetURL())
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Backend == "s3" {
		s3Config, err := s3.NewConfig(".s3.env")
		if err != nil {
			return nil, fmt.Errorf("failed to load S3 config: %w", err)
		}
		return s3.NewClient(s3Config)
	}
	return storage.NewDisk(cfg.Storage.DataDir)
}

func main() {
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := connectWithRetry(&appConfig.Database, 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	store, err := newStore(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	verifier, err := auth.NewVerifier(
		context.Background(),
		appConfig.Auth.JWKSURL,
		time.Duration(appConfig.Auth.LeewaySeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("Failed to initialize token verifier: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	fileRepo := repository.NewExamFileRepository(db)
	requestRepo := repository.NewDeleteRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	reportRepo := repository.NewReportRepository(db)

	var emailSender email.Sender = email.Console{}
	if appConfig.Email.SendGridKey != "" {
		emailSender = email.NewSendGrid(
			appConfig.Email.SendGridKey,
			appConfig.Email.FromName,
			appConfig.Email.FromEmail,
		)
	}

	userService := service.NewUserService(userRepo, auditRepo)
	semesterService := service.NewSemesterService(semesterRepo)
	courseService := service.NewCourseService(courseRepo, semesterRepo)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, emailSender)
	fileService := service.NewExamFileService(fileRepo, courseRepo, store, auditRepo, appConfig.Storage.MaxUploadMB)
	requestService := service.NewDeleteRequestService(requestRepo, fileRepo, store, auditRepo, notificationService)
	calendarService := service.NewCalendarService(calendarRepo)
	reportService := service.NewReportService(reportRepo)
	archiveService := service.NewArchiveService(fileRepo, store)
	previewService := preview.NewService(fileRepo, store)
	sweeper := service.NewSweeper(fileRepo, store)

	userHandler := handler.NewUserHandler(userService)
	semesterHandler := handler.NewSemesterHandler(semesterService, archiveService)
	courseHandler := handler.NewCourseHandler(courseService, fileService, archiveService)
	fileHandler := handler.NewExamFileHandler(fileService, previewService)
	requestHandler := handler.NewDeleteRequestHandler(requestService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	reportHandler := handler.NewReportHandler(reportService, auditRepo)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(verifier.Middleware)
		r.Use(handler.ActorMiddleware(userService))

		r.Route("/delete-requests", func(r chi.Router) {
			r.Post("/", requestHandler.Submit)
			r.Get("/pending", requestHandler.ListPending)
			r.Post("/{id}/decision", requestHandler.Decide)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", fileHandler.Upload)
			r.Get("/exam/{id}", fileHandler.ListByExam)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", fileHandler.Download)
				r.Get("/info", fileHandler.Info)
				r.Get("/preview", fileHandler.Preview)
				r.Delete("/", fileHandler.HardDelete)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Post("/", courseHandler.Create)
			r.Get("/", courseHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", courseHandler.Get)
				r.Put("/", courseHandler.Update)
				r.Delete("/", courseHandler.Delete)
				r.Post("/exams", courseHandler.CreateExam)
				r.Get("/exams", courseHandler.ListExams)
				r.Get("/files", courseHandler.ListFiles)
				r.Get("/archive", courseHandler.ExportArchive)
			})
		})

		r.Route("/semesters", func(r chi.Router) {
			r.Post("/", semesterHandler.Create)
			r.Get("/", semesterHandler.List)
			r.Get("/active", semesterHandler.Active)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", semesterHandler.Update)
				r.Delete("/", semesterHandler.Delete)
				r.Post("/activate", semesterHandler.Activate)
				r.Get("/archive", semesterHandler.ExportArchive)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Put("/{id}/read", notificationHandler.MarkRead)
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Post("/", calendarHandler.Create)
			r.Get("/", calendarHandler.ListRange)
			r.Put("/{id}", calendarHandler.Update)
			r.Delete("/{id}", calendarHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", reportHandler.Dashboard)
			r.Get("/audit", reportHandler.AuditLog)
		})
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Periodic sweep of storage objects no longer referenced by metadata.
	sweepTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-sweepTicker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
				if err := sweeper.Sweep(ctx); err != nil {
					log.Printf("Error during orphan sweep: %v", err)
				}
				cancel()
			case <-done:
				sweepTicker.Stop()
				return
			}
		}
	}()

	<-quit
	close(done)
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}
