package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/config"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/gemini"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/geocode"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/logging"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/minio"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/search"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
	httpx "github.com/njprem/TripPlanner_APP_BackEnd/internal/transport/http"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	logCloser, err := logging.Setup(cfg.LogstashTCPAddr, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logCloser.Close()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	tripRepo := postgres.NewTripRepo(db)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, sessionRepo, jwtManager, service.NewGoogleVerifier(cfg.GoogleAudience))

	generator := gemini.NewClient(gemini.Config{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		BaseURL:         cfg.GeminiBaseURL,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		Timeout:         cfg.GeminiTimeout,
		MaxRetries:      cfg.GeminiMaxRetries,
		RetryBackoff:    cfg.GeminiRetryBackoff,
	})
	if !generator.Configured() {
		log.Printf("gemini: GEMINI_API_KEY not set, trip generation will answer 503")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	var storage ports.ObjectStorage
	if cfg.MinIOEnabled() {
		client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("minio: %v", err)
		}
		store := minio.NewStorage(client, cfg.MinIOPublicURL)
		if err := store.EnsureBucket(startCtx, cfg.MinIOBucketExports); err != nil {
			log.Printf("minio: ensure bucket %s: %v (export disabled)", cfg.MinIOBucketExports, err)
		} else {
			storage = store
		}
	} else {
		log.Printf("minio: not configured, itinerary export disabled")
	}

	var index ports.TripIndex
	if cfg.SearchEnabled() {
		es, err := search.NewClient(cfg.ElasticsearchURLs)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = search.NewTripIndex(es, cfg.ElasticsearchIndex, 5*time.Second)
	} else {
		log.Printf("elasticsearch: not configured, trip search disabled")
	}

	tripService := service.NewTripService(tripRepo, generator, index, storage, service.TripServiceConfig{
		GenerationTimeout: cfg.GenerationTimeout,
		ExportBucket:      cfg.MinIOBucketExports,
	})
	placeService := service.NewPlaceService(geocode.NewClient(geocode.Config{
		BaseURL:   cfg.NominatimBaseURL,
		UserAgent: cfg.NominatimUserAgent,
		CacheTTL:  cfg.PlaceCacheTTL,
	}))

	e := httpx.NewRouter(cfg.AllowOrigins, func(ctx context.Context) error {
		return postgres.Ping(ctx, db, time.Second)
	})
	httpx.RegisterAuth(e, authService)
	httpx.RegisterPlaces(e, placeService)
	httpx.RegisterTrips(e, authService, tripService, cfg.PublicBaseURL)
	httpx.RegisterPages(e, authService, tripService, cfg.PublicBaseURL)
	httpx.RegisterSwagger(e, cfg.SwaggerSpecPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeSessions(ctx, authService, cfg.SessionPurgeInterval)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// purgeSessions deletes sessions that expired more than one interval ago,
// once per interval, until ctx is done.
func purgeSessions(ctx context.Context, auth *service.AuthService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx, interval)
			if err != nil {
				log.Printf("sessions: purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sessions: purged %d expired", n)
			}
		}
	}
}
