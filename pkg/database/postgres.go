package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/edu-cert-api/db"
	"github.com/noah-isme/edu-cert-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client, running pending
// migrations when AutoMigrate is set.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	conn.SetConnMaxLifetime(1 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(conn.DB); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return conn, nil
}
