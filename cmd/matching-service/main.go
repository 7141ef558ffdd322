package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/ocumatch/platform/pkg/common/config"
	"github.com/ocumatch/platform/pkg/common/database"
	"github.com/ocumatch/platform/pkg/common/kafka"
	"github.com/ocumatch/platform/pkg/common/logger"
	"github.com/ocumatch/platform/pkg/common/middleware"
	"github.com/ocumatch/platform/pkg/common/models"
	"github.com/ocumatch/platform/pkg/matching"
)

type MatchingApp struct {
	service  *matching.Service
	consumer *kafka.Consumer
}

func main() {
	logger.Init()
	cfg := config.Load()

	policy, err := matching.LoadPolicy(cfg.MatchingPolicyPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default matching policy")
	}

	store := matching.NewStoreClient(cfg.RegistryBaseURL, cfg.StoreRequestTimeout, cfg.StoreRetryAttempts)
	cache := database.GetRedis()
	defer database.CloseRedis()

	producer := kafka.NewProducer(cfg.MatchEventsTopic)
	defer producer.Close()

	var dlq *kafka.Producer
	if cfg.MatchEventsDLQTopic != "" {
		dlq = kafka.NewProducer(cfg.MatchEventsDLQTopic)
		defer dlq.Close()
	}

	svc := matching.NewService(store, policy, cache, cfg.SuggestionCacheTTL, producer, dlq, cfg.PerfectMatchAutoCommit)

	app := &MatchingApp{service: svc}
	app.consumer = kafka.NewConsumer(cfg.RegistryEventsTopic, "matching-service")
	defer app.consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := app.consumer.Consume(ctx, app.handleEvent); err != nil && err != context.Canceled {
			logger.Log.WithError(err).Error("consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	matching.NewHTTPHandler(svc).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, "8082"),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": "8082",
		}).Info("Matching Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Matching Service...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Matching Service stopped")
}

// handleEvent runs the perfect-match scan for a freshly registered
// record. The scan only reports a candidate unless auto-commit was
// enabled; a race lost to another committer surfaces as a warning, not
// a failure.
func (a *MatchingApp) handleEvent(ctx context.Context, event models.Event) error {
	var subjectType, subjectID string
	switch event.Type {
	case "donor.registered":
		subjectType = "donor"
		subjectID, _ = event.Data["donor_id"].(string)
	case "recipient.registered":
		subjectType = "recipient"
		subjectID, _ = event.Data["recipient_id"].(string)
	case "match.committed":
		// A commit landed through the registry directly; drop the
		// shortlist so the matched pair is not re-offered.
		a.service.InvalidateSuggestions(ctx)
		return nil
	default:
		return nil
	}
	if subjectID == "" {
		return fmt.Errorf("event %s missing subject id", event.ID)
	}

	detection, err := a.service.Detect(ctx, subjectType, subjectID)
	if err != nil {
		return err
	}
	if detection.Found {
		logger.Log.WithFields(map[string]interface{}{
			"donor_id":     detection.DonorID,
			"recipient_id": detection.RecipientID,
			"committed":    detection.Committed,
		}).Info("perfect match detected")
	}
	return nil
}
