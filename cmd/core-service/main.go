// jobtrail core-service
//
// Owns the job-search core: the discovery pipeline that polls external
// job boards into the triage inbox, and the kanban state machine for
// tracked applications. Exposed over an internal HTTP API consumed by
// the gateway; domain events go out over Redis pub/sub.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobtrail/core-service/internal/config"
	"jobtrail/core-service/internal/db"
	"jobtrail/core-service/internal/discovery"
	"jobtrail/core-service/internal/event"
	"jobtrail/core-service/internal/httpapi"
	"jobtrail/core-service/internal/kanban"
	"jobtrail/core-service/internal/storage"
	"jobtrail/core-service/internal/triage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[core-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("[core-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[core-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[core-service] PostgreSQL connected ✓")

	log.Println("[core-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[core-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[core-service] Redis connected ✓")

	store := storage.New(pool)
	events := event.NewRedisPublisher(rdb)

	feedTTL := time.Duration(cfg.FeedTTLDays) * 24 * time.Hour

	creds := discovery.CredentialsFrom(cfg.AdzunaAppID, cfg.AdzunaAppKey)
	if !creds.IsConfigured() {
		log.Println("[core-service] Adzuna credentials not set — discovery fetches will be no-ops")
	}
	fetcher := discovery.NewAdzunaFetcher(creds, cfg.AdzunaCountry)
	worker := discovery.NewWorker(fetcher, store, events, feedTTL)
	sched := discovery.NewScheduler(store, worker, cfg.ScrapeIntervalHours)

	kanbanSvc := kanban.NewService(store, events)
	triageSvc := triage.NewService(store, kanbanSvc)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[core-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	h := httpapi.NewHandler(store, kanbanSvc, triageSvc, sched, events, feedTTL)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      httpapi.NewRouter(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[core-service] Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[core-service] HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[core-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[core-service] Shutdown error: %v", err)
	}
	log.Println("[core-service] Stopped.")
}
