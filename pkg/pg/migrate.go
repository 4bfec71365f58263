package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies schema migrations with goose. The pgx pool is bridged to
// database/sql because goose speaks only the standard interface.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	if cfg.MigrationsPath == "" {
		return ErrMigrationPathMissing
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "closing migration connection failed", "error", err)
		}
	}()

	goose.SetLogger(gooseSlog{ctx: ctx, log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

// gooseSlog routes goose's printf-style output through slog.
type gooseSlog struct {
	ctx context.Context
	log *slog.Logger
}

func (g gooseSlog) Fatalf(format string, v ...any) {
	g.log.ErrorContext(g.ctx, fmt.Sprintf(format, v...))
}

func (g gooseSlog) Printf(format string, v ...any) {
	g.log.InfoContext(g.ctx, fmt.Sprintf(format, v...))
}
