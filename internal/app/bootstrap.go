package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"titledoctor/internal/bus"
	"titledoctor/internal/config"
)

type Dependencies struct {
	DB  *sql.DB
	Bus *bus.NSQBus
}

// Bootstrap brings up the durable infrastructure: the Postgres job
// store (with migrations) and the NSQ bus.
func Bootstrap(cfg *config.Config) (*Dependencies, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1)
		time.Sleep(retryDelay)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if err := RunMigrations(db, cfg.MigrationPath); err != nil {
		return nil, err
	}

	eventBus, err := bus.NewNSQBus(cfg.NSQDHost, cfg.NSQLookupd)
	if err != nil {
		return nil, err
	}

	topics := append([]string{
		config.TopicSubmitted,
		config.TopicChannelResolved,
		config.TopicVideosFetched,
		config.TopicTitlesReady,
		config.TopicEmailSent,
		config.TopicErrorNotified,
	}, config.FailureTopics...)
	bus.PreCreateTopics(cfg.NSQDHTTP, topics)

	return &Dependencies{DB: db, Bus: eventBus}, nil
}

func RunMigrations(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up error: %w", err)
	}
	return nil
}
