package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/RigobertoCast/donde-jugar-chile/internal/app"
	"github.com/RigobertoCast/donde-jugar-chile/internal/config"
	"github.com/RigobertoCast/donde-jugar-chile/internal/geocode"
	"github.com/RigobertoCast/donde-jugar-chile/internal/metrics"
	"github.com/RigobertoCast/donde-jugar-chile/internal/storage/postgres"
	transporthttp "github.com/RigobertoCast/donde-jugar-chile/internal/transport/http"
	"github.com/RigobertoCast/donde-jugar-chile/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	geocoder := buildGeocoder(startupCtx, cfg, logger)
	clk := clockwork.NewRealClock()

	venueRepo := postgres.NewVenueRepository(pool)
	venueSvc := app.NewVenueService(venueRepo, geocoder, clk)
	announcementRepo := postgres.NewAnnouncementRepository(pool)
	rosterSvc := app.NewRosterService(announcementRepo, venueRepo, clk)

	recorder := metrics.NewRecorder()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", recorder.Handler())
	mux.Handle("/venues", transporthttp.HandleVenues(venueSvc))
	mux.Handle("/venues/", transporthttp.HandleVenueByID(venueSvc))
	mux.Handle("/announcements", transporthttp.HandleAnnouncements(rosterSvc))
	mux.Handle("/announcements/", transporthttp.HandleJoin(rosterSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	handler := transporthttp.RequestLogger(recorder.Middleware(corsMiddleware.Handler(mux)), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Infof("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}

// buildGeocoder wraps the Nominatim client with the Redis cache when Redis
// is reachable. The cache is an optimization, not a dependency: when Redis
// is down the service still geocodes directly.
func buildGeocoder(ctx context.Context, cfg config.Config, logger *logrus.Logger) geocode.Geocoder {
	nominatim := geocode.NewNominatim(cfg.GeocoderBaseURL, cfg.GeocoderCountry)

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warnf("redis unavailable at %s, geocode cache disabled: %v", cfg.RedisAddr, err)
		_ = rdb.Close()
		return nominatim
	}

	logger.Infof("geocode cache enabled via redis at %s", cfg.RedisAddr)
	return geocode.NewCached(nominatim, rdb, cfg.GeocodeCacheTTL, logger)
}
