package service

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/goal"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/recurrence"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Wallet     *WalletService
	Category   *CategoryService
	Ledger     *ledger.Ledger
	Recurrence *recurrence.Scheduler
	Goal       *goal.Service
}

// Options tunes the services built by NewService.
type Options struct {
	RecurringConcurrency int
}

// NewService wires every service over one storage and one processor.
func NewService(s storage.Storage, p operator.Processor, publisher events.Publisher, logger *logrus.Logger, opts Options) *Service {
	return &Service{
		Wallet:     NewWalletService(s, p),
		Category:   NewCategoryService(s, p),
		Ledger:     ledger.New(s, p, publisher, logger),
		Recurrence: recurrence.NewScheduler(s, p, publisher, logger, opts.RecurringConcurrency),
		Goal:       goal.NewService(s, p),
	}
}
