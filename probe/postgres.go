package probe

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gmc/bootstrap/config"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresProber checks that the declared PostgreSQL endpoint accepts
// connections and answers a trivial query. Each probe opens a short-lived
// connection and closes it before returning.
type PostgresProber struct {
	cfg config.DatabaseConfig
}

// NewPostgres creates a prober for the given database descriptor.
func NewPostgres(cfg config.DatabaseConfig) *PostgresProber {
	return &PostgresProber{cfg: cfg}
}

// Name identifies the dependency.
func (p *PostgresProber) Name() string {
	return "postgres"
}

// Addr returns the probed address without credentials.
func (p *PostgresProber) Addr() string {
	return fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
}

// Check opens a connection, pings it, and runs SELECT 1.
func (p *PostgresProber) Check(ctx context.Context) error {
	db, err := sql.Open("postgres", p.cfg.DSN())
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	// A probe never needs more than one connection.
	db.SetMaxOpenConns(1)

	return check(ctx, db)
}

// check verifies an already-open pool: ping plus a trivial query, both
// bounded by ctx.
func check(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("query check: %w", err)
	}

	return nil
}
