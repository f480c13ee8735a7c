package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/api"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/recurrence"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

func main() {
	app := &cli.App{
		Name:  "ledger-server",
		Usage: "personal finance ledger",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the recurring transaction worker",
				Action: serve,
			},
			{
				Name:  "process-recurring",
				Usage: "execute every recurring definition due on a day and exit",
				Flags: []cli.Flag{
					&cli.TimestampFlag{
						Name:   "date",
						Usage:  "day to process as YYYY-MM-DD (defaults to today)",
						Layout: time.DateOnly,
					},
				},
				Action: processRecurring,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending postgres migrations",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("ledger-server")
	}
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return nil, nil, fmt.Errorf("config.ProcessEnvironmentVariables: %w", err)
	}
	if err := envConfig.Validate(); err != nil {
		return nil, nil, err
	}
	return envConfig, logging.SetupLogging(envConfig.LogLevel), nil
}

// openStorage returns the configured backend. The pinger is nil for the memory backend.
func openStorage(envConfig *config.Config, logger *logrus.Logger) (storage.Storage, status.Pinger, error) {
	if envConfig.StorageBackend == config.BackendMemory {
		logger.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), nil, nil
	}

	db, err := storage.NewPostgres(envConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.RunMigrations(db.DB(), logger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, db, nil
}

func openPublisher(envConfig *config.Config, logger *logrus.Logger) (events.Publisher, error) {
	if envConfig.AMQPURL == "" {
		return events.Noop{}, nil
	}
	publisher, err := events.NewAMQPPublisher(envConfig.AMQPURL, envConfig.AMQPExchange, envConfig.AMQPRoutingKey)
	if err != nil {
		return nil, err
	}
	logger.WithField("exchange", envConfig.AMQPExchange).Info("publishing ledger events")
	return publisher, nil
}

func serve(c *cli.Context) error {
	envConfig, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("ledger-server starting")

	store, pinger, err := openStorage(envConfig, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := openPublisher(envConfig, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	delegator := operator.NewOperatorDelegator(store, envConfig.OperatorWorkers)
	delegator.Start()
	defer delegator.Stop()

	svc := service.NewService(store, delegator, publisher, logger, service.Options{
		RecurringConcurrency: envConfig.RecurringConcurrency,
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if envConfig.RecurringEnabled {
		worker := recurrence.NewWorker(svc.Recurrence, envConfig.RecurringInterval, logger)
		g.Go(func() error {
			worker.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		httpRest := api.Rest{
			Logger:  logger,
			Port:    envConfig.HTTPPort,
			Service: svc,
			Pinger:  pinger,
		}
		return httpRest.Serve(ctx)
	})

	return g.Wait()
}

func processRecurring(c *cli.Context) error {
	envConfig, logger, err := loadConfig()
	if err != nil {
		return err
	}

	store, _, err := openStorage(envConfig, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := openPublisher(envConfig, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	scheduler := recurrence.NewScheduler(store, operator.Inline{Storage: store}, publisher, logger, envConfig.RecurringConcurrency)
	if day := c.Timestamp("date"); day != nil {
		fixed := *day
		scheduler = scheduler.WithClock(func() time.Time { return fixed })
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := scheduler.ProcessDue(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d recurring definitions failed", summary.Failed, summary.Due), 1)
	}
	return nil
}

func migrate(_ *cli.Context) error {
	envConfig, logger, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := storage.NewPostgres(envConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	return storage.RunMigrations(db.DB(), logger)
}
