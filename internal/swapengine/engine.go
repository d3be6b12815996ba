// Package swapengine wires the swap stack together from configuration: RPC
// client, token catalog, balances, pool directory, quoting, execution and the
// optional Redis-backed events and flags.
package swapengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/balance"
	"github.com/fartswap/fartswap-core/internal/config"
	"github.com/fartswap/fartswap-core/internal/events"
	"github.com/fartswap/fartswap-core/internal/flags"
	"github.com/fartswap/fartswap-core/internal/jupiter"
	"github.com/fartswap/fartswap-core/internal/pools"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/rpc"
	"github.com/fartswap/fartswap-core/internal/session"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/tokens"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

// Engine is the assembled swap stack.
type Engine struct {
	RPC      *rpc.Client
	Tokens   *tokens.Cache
	Balances *balance.Reader
	Pools    *pools.Directory
	Quotes   *quote.Service
	Executor *swap.Executor
	Events   events.Publisher

	// Flags and History are nil when Redis is not configured.
	Flags   *flags.Store
	History *events.RedisPublisher
	// Signer is nil when no private key is configured.
	Signer wallet.Wallet

	cfg    *config.Config
	logger *logrus.Logger
	redis  *redis.Client
}

// NewEngine builds the stack. Redis is optional: when REDIS_ADDR is empty or
// unreachable the engine runs with no event publishing and no flags.
func NewEngine(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Engine, error) {
	if logger == nil {
		logger = logrus.New()
	}

	// 1. RPC client
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Commitment:   cfg.Commitment,
		Logger:       logger,
	})

	// 2. Token catalog, shared between sessions
	lister := jupiter.NewClient(cfg.TokenListURL, cfg.HTTPTimeout)
	catalog := tokens.NewCache(tokens.NewLoader(lister, logger), cfg.TokenCacheTTL)

	// 3. Pool directory and quoting
	dir := pools.NewDirectory(pools.DirectoryConfig{
		Source:          pools.NewHTTPSource(cfg.PoolListURL, cfg.HTTPTimeout, cfg.IncludeUnofficial),
		RefreshInterval: cfg.PoolRefreshInterval,
		Logger:          logger,
	})
	quotes := quote.NewService(dir, quote.NewEngine(rpcClient, logger))

	e := &Engine{
		RPC:      rpcClient,
		Tokens:   catalog,
		Balances: balance.NewReader(rpcClient, logger),
		Pools:    dir,
		Quotes:   quotes,
		Events:   events.Nop{},
		cfg:      cfg,
		logger:   logger,
	}

	// 4. Redis for events and flags
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.WithError(err).WithField("addr", addr).Warn("redis unreachable, swap events and flags disabled")
			_ = rc.Close()
		} else {
			store, err := flags.NewStore(rc)
			if err != nil {
				_ = rc.Close()
				return nil, fmt.Errorf("failed to create flags store: %w", err)
			}
			e.redis = rc
			e.Flags = store
			pub := events.NewRedisPublisher(rc, logger)
			e.Events = pub
			e.History = pub
		}
	}

	// 5. Executor
	e.Executor = swap.NewExecutor(swap.ExecutorConfig{
		Quotes: quotes,
		Chain:  rpcClient,
		Confirmer: swap.NewConfirmer(swap.ConfirmerConfig{
			Sender:         rpcClient,
			Logger:         logger,
			SubmitAttempts: cfg.SubmitAttempts,
			ConfirmTimeout: cfg.ConfirmTimeout,
			Commitment:     cfg.Commitment,
		}),
		Events: e.Events,
		Logger: logger,
	})

	// 6. Optional signing wallet
	if key := strings.TrimSpace(cfg.WalletPrivateKey); key != "" {
		kp, err := wallet.NewKeypair(key)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to load wallet: %w", err)
		}
		e.Signer = kp
		logger.WithField("wallet", kp.PublicKey().String()).Info("signing wallet loaded")
	}

	return e, nil
}

// SessionDeps returns what a session needs from the stack.
func (e *Engine) SessionDeps() session.Deps {
	return session.Deps{
		Catalog:         e.Tokens,
		Balances:        e.Balances,
		Quotes:          e.Quotes,
		Swaps:           e.Executor,
		Logger:          e.logger,
		DefaultSlippage: e.cfg.DefaultSlippage,
	}
}

// Redis returns the shared client, or nil when Redis is disabled.
func (e *Engine) Redis() *redis.Client {
	return e.redis
}

// Run keeps the pool directory fresh until ctx is done. It warms the pool
// cache first so the first quote does not pay for the download.
func (e *Engine) Run(ctx context.Context) {
	if err := e.Pools.EnsureLoaded(ctx); err != nil {
		e.logger.WithError(err).Warn("initial pool load failed, will retry on first quote")
	} else {
		e.logger.WithField("pools", e.Pools.Stats().Pools).Info("pool directory loaded")
	}
	e.Pools.Run(ctx)
}

func (e *Engine) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
}
