package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/tokens"
)

type fallbackSource struct{ imports int }

func (f *fallbackSource) Load(ctx context.Context) tokens.LoadResult {
	return tokens.LoadResult{Catalog: tokens.Fallback(), Fallback: true}
}

func (f *fallbackSource) Import(ctx context.Context, mint string) (tokens.Descriptor, error) {
	f.imports++
	if d, ok := tokens.Fallback().Find(mint); ok {
		return d, nil
	}
	return tokens.Descriptor{}, tokens.ErrTokenNotFound
}

func TestPairArgs(t *testing.T) {
	amount, from, to, err := pairArgs([]string{"1", "SOL", "to", "USDC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "SOL", "USDC"}, []string{amount, from, to})

	amount, from, to, err = pairArgs([]string{"0.5", "USDC", "SOL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0.5", "USDC", "SOL"}, []string{amount, from, to})

	_, _, _, err = pairArgs([]string{"1", "SOL", "into", "USDC"})
	assert.Error(t, err)
}

func TestResolveToken(t *testing.T) {
	src := &fallbackSource{}
	ctx := context.Background()

	d, err := resolveToken(ctx, src, "fartswap")
	require.NoError(t, err)
	assert.Equal(t, constants.MintFARTSWAP, d.Mint)
	assert.Equal(t, 0, src.imports)

	d, err = resolveToken(ctx, src, constants.MintUSDC)
	require.NoError(t, err)
	assert.Equal(t, "USDC", d.Symbol)
	assert.Equal(t, 1, src.imports)

	_, err = resolveToken(ctx, src, "NOPE")
	assert.ErrorIs(t, err, tokens.ErrTokenNotFound)
}
