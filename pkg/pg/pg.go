package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	ConnectionString string        `env:"PG_CONN_URL,required"`
	MaxOpenConns     int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MinIdleConns     int32         `env:"PG_MIN_IDLE_CONNS" envDefault:"2"`
	RetryAttempts    int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath string `env:"PG_MIGRATIONS_PATH" envDefault:"migrations"`
}

// Connect establishes a pgx connection pool, retrying with linearly growing
// backoff so simultaneous restarts do not hammer the database.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}
	poolConfig.MaxConns = cfg.MaxOpenConns
	poolConfig.MinConns = cfg.MinIdleConns

	for i := range cfg.RetryAttempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrConnect
}

// IsNotFound detects pgx.ErrNoRows for uniform "not found" handling.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey detects unique constraint violations (SQLSTATE 23505),
// e.g. a duplicate account email.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
