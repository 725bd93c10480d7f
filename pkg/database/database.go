// Package database opens the postgres pool the ticket store runs on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/bajehapp/bajeh_backend/config"
)

// DSN builds a PostgreSQL connection string from config.
func DSN(c config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Open connects, applies pool settings and pings before returning.
func Open(c config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(c))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if c.Pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.Pool.MaxOpenConns)
	}
	if c.Pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.Pool.MaxIdleConns)
	}
	if c.Pool.ConnMaxLifetimeMin > 0 {
		db.SetConnMaxLifetime(time.Duration(c.Pool.ConnMaxLifetimeMin) * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
