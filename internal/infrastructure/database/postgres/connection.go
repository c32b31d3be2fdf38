// Package postgres holds the PostgreSQL access layer: the pgx connection pool,
// the transaction helper, the auxiliary-table schema and the patent store used
// by the auxiliary-table filler.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/cnsipo-attrs/internal/config"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

const pingTimeout = 5 * time.Second

// NewConnectionPool opens a pgx pool for cfg and verifies it with a ping.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*pgxpool.Pool, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	poolCfg, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "invalid database configuration")
	}
	configurePool(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "database connection failed")
	}

	log.Info("connected to PostgreSQL",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
		logging.Int("max_conns", int(poolCfg.MaxConns)),
	)
	return pool, nil
}

// buildConnString renders cfg as a postgres:// URL.
func buildConnString(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   cfg.DBName,
	}
	if cfg.Password == "" {
		u.User = url.User(cfg.User)
	}
	q := u.Query()
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// configurePool copies the non-zero pool limits from cfg.
func configurePool(poolCfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
}

// WithTransaction runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise. A panic in fn rolls back and is re-raised.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx, txCtx context.Context) error) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx, ctx); err != nil {
		return err
	}
	if cerr := tx.Commit(ctx); cerr != nil {
		return errors.Wrap(cerr, errors.CodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// HealthCheck pings the pool.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New(errors.CodeDatabaseError, "database not configured")
	}
	if err := pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "database health check failed")
	}
	return nil
}

// Close closes pool; nil is ignored.
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

// ParseTableName splits a plain or schema-qualified table name into a
// pgx.Identifier.
func ParseTableName(name string) (pgx.Identifier, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, errors.New(errors.CodeConfigInvalid, "invalid table name").WithDetail(fmt.Sprintf("%q", name))
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New(errors.CodeConfigInvalid, "invalid table name").WithDetail(fmt.Sprintf("%q", name))
		}
	}
	return pgx.Identifier(parts), nil
}

//Personal.AI order the ending
