package service

import (
	"sync"

	"github.com/ekenna/bookvault/config"
	"github.com/ekenna/bookvault/internal/jsonlog"
	"github.com/ekenna/bookvault/repository"
)

type Service interface {
	books
}

// service defines the service layer.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
}

// New creates a new instance of Service.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
	}
}
