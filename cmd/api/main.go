package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"liftlog/api/internal/app"
	"liftlog/api/internal/config"
	"liftlog/api/internal/genai"
	"liftlog/api/internal/revision"
	"liftlog/api/internal/search"
	"liftlog/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	workoutStore := store.NewWorkoutStore(db)

	pgSearch := search.NewPostgres(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient, pgSearch)
	if meiliClient != nil {
		defer meiliClient.Close()
		searchService.ReindexAll(ctx)
	}

	var revisions app.RevisionStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for staged revisions")
		redisStore, err := revision.NewRedisStore(cfg.RedisURL, cfg.RevisionTTL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		revisions = redisStore
	} else {
		log.Printf("Using in-memory store for staged revisions")
		revisions = revision.NewMemoryStore(cfg.RevisionTTL)
	}

	var gen app.Generator
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		gen = genai.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
	} else {
		log.Printf("WARNING: OPENAI_API_KEY not set, revision generation disabled")
	}

	service := app.NewService(cfg, workoutStore, revisions, gen, searchService)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("LiftLog API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
