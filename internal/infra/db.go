// README: Postgres connection pool initialization using pgxpool, with a bounded startup retry.
package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/logging"
)

const dbConnectTimeout = 30 * time.Second

// NewDB opens the pool and waits until Postgres answers a ping, backing off
// exponentially for up to dbConnectTimeout.
func NewDB(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	log = logging.OrNop(log)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = dbConnectTimeout

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("postgres not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}
