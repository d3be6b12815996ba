package tokens

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/jupiter"
)

type fakeLister struct {
	tokens []jupiter.Token
	err    error
	calls  int
}

func (f *fakeLister) Tokens(ctx context.Context) ([]jupiter.Token, error) {
	f.calls++
	return f.tokens, f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func upstreamList() []jupiter.Token {
	return []jupiter.Token{
		{Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP", Name: "Jupiter", Decimals: 6, LogoURI: "https://jup"},
		{Mint: constants.MintUSDC, Symbol: "USDC", Name: "USD Coin (upstream)", Decimals: 6, LogoURI: "https://usdc-upstream"},
		{Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Symbol: "Bonk", Name: "Bonk", Decimals: 5},
		{Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP2", Name: "dup", Decimals: 6},
		{Mint: "", Symbol: "EMPTY"},
	}
}

func TestLoad_MergesPinnedFirst(t *testing.T) {
	l := NewLoader(&fakeLister{tokens: upstreamList()}, quietLogger())

	res := l.Load(context.Background())
	require.NotNil(t, res.Catalog)
	assert.Empty(t, res.Warning)
	assert.False(t, res.Fallback)

	all := res.Catalog.Tokens()
	require.Len(t, all, len(constants.PinnedTokens)+2)

	for i, p := range constants.PinnedTokens {
		assert.Equal(t, p.Mint, all[i].Mint, "pinned token %d out of order", i)
	}
	assert.Equal(t, "JUP", all[len(constants.PinnedTokens)].Symbol)
	assert.Equal(t, "Bonk", all[len(constants.PinnedTokens)+1].Symbol)

	usdc, ok := res.Catalog.Find(constants.MintUSDC)
	require.True(t, ok)
	assert.Equal(t, "USD Coin", usdc.Name, "pinned metadata wins over upstream")
	assert.Equal(t, "https://usdc-upstream", usdc.LogoURI, "upstream logo is preferred")

	fart, ok := res.Catalog.Find(constants.MintFARTSWAP)
	require.True(t, ok)
	assert.Equal(t, "/CircleFartSwapLogo.png", fart.LogoURI)
}

func TestLoad_Idempotent(t *testing.T) {
	l := NewLoader(&fakeLister{tokens: upstreamList()}, quietLogger())

	a := l.Load(context.Background())
	b := l.Load(context.Background())
	assert.Equal(t, a.Catalog.Tokens(), b.Catalog.Tokens())
}

func TestLoad_FallbackOnError(t *testing.T) {
	l := NewLoader(&fakeLister{err: errors.New("dial tcp: connection refused")}, quietLogger())

	res := l.Load(context.Background())
	require.NotNil(t, res.Catalog)
	assert.True(t, res.Fallback)
	assert.NotEmpty(t, res.Warning)

	_, ok := res.Catalog.Find(constants.MintSOL)
	assert.True(t, ok)
	fart, ok := res.Catalog.Find(constants.MintFARTSWAP)
	require.True(t, ok)
	assert.Equal(t, "/fartswap-logo.svg", fart.LogoURI)
	assert.Equal(t, len(constants.PinnedTokens), res.Catalog.Len())
}

func TestCatalog_Search(t *testing.T) {
	cat := Merge(upstreamList())

	assert.Len(t, cat.Search("", 0), cat.Len())

	got := cat.Search("fart", 0)
	require.Len(t, got, 2)
	assert.Equal(t, "FARTSWAP", got[0].Symbol)
	assert.Equal(t, "FARTCOIN", got[1].Symbol)

	got = cat.Search("jupyiw", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "JUP", got[0].Symbol)

	got = cat.Search("usd", 1)
	assert.Len(t, got, 1)
}

func TestCatalog_Pinned(t *testing.T) {
	cat := Merge(upstreamList())
	pinned := cat.Pinned()
	require.Len(t, pinned, len(constants.PinnedTokens))
	assert.True(t, cat.IsPinned(constants.MintGOAT))
	assert.False(t, cat.IsPinned("JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"))
}

func TestImport(t *testing.T) {
	lister := &fakeLister{tokens: upstreamList()}
	l := NewLoader(lister, quietLogger())
	ctx := context.Background()

	d, err := l.Import(ctx, "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263")
	require.NoError(t, err)
	assert.Equal(t, "Bonk", d.Symbol)

	_, err = l.Import(ctx, "not-a-key")
	assert.ErrorIs(t, err, ErrInvalidMint)
	assert.Equal(t, 1, lister.calls, "invalid address must not hit the network")

	_, err = l.Import(ctx, "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
