package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/wwbing/wxorder/internal/config"
	"github.com/wwbing/wxorder/internal/database"
	"github.com/wwbing/wxorder/internal/handler"
	"github.com/wwbing/wxorder/internal/queue"
	"github.com/wwbing/wxorder/internal/repository"
	"github.com/wwbing/wxorder/internal/router"
)

func main() {
	// Load .env when present; real deployments set the variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	sessionRepo := repository.NewSessionRepo(db)
	selectionRepo := repository.NewSelectionRepo(db)
	menuRepo := repository.NewMenuItemRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	sessions := handler.NewSessionHandler(cfg, sessionRepo, selectionRepo, orderRepo)
	selections := handler.NewSelectionHandler(sessionRepo, selectionRepo, menuRepo)
	queries := handler.NewQueryHandler(sessionRepo, selectionRepo)

	// Nil when redis is unreachable; cache and rate limiting then degrade
	// to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; caching and rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterOrdering(e, cfg, rdb, sessions, selections, queries)

	// Background consumer logging session.closed events; it reconnects on
	// broker failures and never stops the server.
	go func() {
		if err := queue.StartSessionClosedConsumer(); err != nil {
			log.Printf("session consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
