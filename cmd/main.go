// swipehire-matching-service
//
// Match formation and credit ledger for the swipe marketplace.
// Exposes a REST API used by the Gateway to implement:
//   - recordSwipe(target, direction, scopeJobId?) — swipe intake + match check
//   - candidate/job queues                        — visibility filtering
//   - resetSkips(targetType, scopeJobId?)         — un-skip left-swiped targets
//   - match status transitions                    — active → … → hired/rejected
//   - credit balance + ledger history
//
// On a new match: debits the recruiter, credits the seeker and inserts the
// match row in one transaction, then publishes EVENT_MATCH_CREATED to Redis
// for Gateway SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swipehire/matching-service/internal/config"
	"swipehire/matching-service/internal/db"
	"swipehire/matching-service/internal/events"
	"swipehire/matching-service/internal/matching"
	"swipehire/matching-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[matching-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[matching-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[matching-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[matching-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[matching-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[matching-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[matching-service] Redis connected ✓")

	// ── Wiring ───────────────────────────────────────────────────────────────
	st := store.NewPostgres(pool)
	engine := matching.NewEngine(st, events.NewRedisPublisher(rdb), matching.Costs{
		Match:   cfg.MatchCost,
		JobPost: cfg.JobPostCost,
	})
	visibility := matching.NewVisibility(st)

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := matching.NewHandler(engine, visibility)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[matching-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[matching-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[matching-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[matching-service] Shutdown error: %v", err)
	}
	log.Println("[matching-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "matching-service",
		"version": version,
	})
}
