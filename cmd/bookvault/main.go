package main

import (
	"os"
	"sync"
	"time"

	"github.com/ekenna/bookvault/config"
	"github.com/ekenna/bookvault/handler"
	"github.com/ekenna/bookvault/internal/jsonlog"
	"github.com/ekenna/bookvault/repository"
	"github.com/ekenna/bookvault/repository/postgres"
	"github.com/ekenna/bookvault/service"
	"github.com/jellydator/ttlcache/v3"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Initialize configuration. A missing .env file is fine; the environment
	// and the defaults still apply.
	_ = godotenv.Load()
	cfg, err := config.Decode()
	if err != nil {
		logger.PrintFatal(err, nil)
		os.Exit(1)
	}

	// Initialize database connection
	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
		os.Exit(1)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	// Other shared resources: waitgroup and the rate-limiter cache
	var wg sync.WaitGroup
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](3 * time.Minute))
	go limiters.Start()

	// Application layers
	repo := repository.New(db)
	service := service.New(cfg, &wg, logger, repo)
	handler := handler.New(cfg, logger, limiters, service)

	// Instantiate application
	app := &app{
		config:  cfg,
		repo:    repo,
		service: service,
		handler: handler,
	}

	// Start HTTP server
	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
		os.Exit(1)
	}
}
