package main

import (
	"fmt"
	"os"

	"gorm.io/gorm/logger"

	"meallens/internal/database"
	"meallens/internal/events"
	"meallens/internal/utils"
)

func main() {
	if err := utils.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	logLevel := logger.Warn
	if database.IsDevelopment() || os.Getenv("MEALLENS_DEBUG") != "" {
		logLevel = logger.Info
		events.EnableLogEmitter()
	}

	db, err := database.Init(database.Config{
		Path:     os.Getenv("MEALLENS_DB_PATH"),
		LogLevel: logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening database: %v\n", err)
		os.Exit(1)
	}

	app := NewApp(db)
	defer app.Close()

	if err := newCLIApp(app).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
