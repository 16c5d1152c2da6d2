package main

import (
	"log/slog"
	"os"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
	"github.com/lite-lake/acme-dns-helper/internal/interfaces/cli"
)

func main() {
	debug := os.Getenv(constants.EnvPrefix+"DEBUG") != ""

	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	logger.Init(&logger.Config{
		Level:     logLevel,
		Format:    os.Getenv(constants.EnvPrefix + "LOG_FORMAT"),
		AddSource: debug,
	})

	cli.Execute()
}
