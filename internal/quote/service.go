package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/fartswap/fartswap-core/internal/pools"
)

var ErrSameToken = errors.New("source and destination tokens must differ")

// PoolFinder resolves the direct pool for a pair.
type PoolFinder interface {
	FindPool(ctx context.Context, mintA, mintB string) (pools.Record, error)
}

// Service combines pool lookup and pricing. Only direct pools are used; a
// pair without one fails with pools.ErrNoLiquidityPool.
type Service struct {
	pools  PoolFinder
	engine *Engine
}

func NewService(finder PoolFinder, engine *Engine) *Service {
	return &Service{pools: finder, engine: engine}
}

func (s *Service) QuotePair(ctx context.Context, req Request) (*Result, error) {
	if req.From.Mint == req.To.Mint {
		return nil, ErrSameToken
	}
	pool, err := s.pools.FindPool(ctx, req.From.Mint, req.To.Mint)
	if err != nil {
		return nil, fmt.Errorf("find pool: %w", err)
	}
	return s.engine.Quote(ctx, &pool, req)
}
