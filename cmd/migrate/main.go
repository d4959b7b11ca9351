package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"library-lending-backend/internal/config"
	"library-lending-backend/internal/logger"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	dir := flag.String("dir", "migrations", "Directory with migration files")
	flag.Parse()

	command := "up"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	var args []string
	if rest := flag.Args(); len(rest) > 1 {
		args = rest[1:]
	}

	logger.Info("Running migrations", "command", command, "dir", *dir)
	if err := goose.Run(command, db, *dir, args...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations complete")
}
