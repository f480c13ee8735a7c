package main

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
)

func main() {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}
	logger := logging.SetupLogging(env.LogLevel)

	db, err := storage.NewPostgres(env)
	if err != nil {
		logger.WithError(err).Fatal("storage.NewPostgres")
		return
	}
	defer db.Close()

	if err := storage.RunMigrations(db.DB(), logger); err != nil {
		logger.WithError(err).Fatal("storage.RunMigrations")
	}
}
