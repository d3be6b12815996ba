package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/jupiter"
)

var (
	ErrInvalidMint   = errors.New("invalid token address")
	ErrTokenNotFound = errors.New("token not found in token list")
)

// Lister fetches the upstream token list.
type Lister interface {
	Tokens(ctx context.Context) ([]jupiter.Token, error)
}

// LoadResult is the outcome of Load. Warning is set when the fallback
// catalog was substituted.
type LoadResult struct {
	Catalog  *Catalog
	Warning  string
	Fallback bool
}

type Loader struct {
	lister Lister
	logger *logrus.Logger
}

func NewLoader(lister Lister, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{lister: lister, logger: logger}
}

// Load never fails: on any upstream problem it returns the fallback catalog
// and a warning for the caller to surface.
func (l *Loader) Load(ctx context.Context) LoadResult {
	upstream, err := l.lister.Tokens(ctx)
	if err != nil {
		l.logger.WithError(err).Warn("token list fetch failed, using fallback tokens")
		return LoadResult{
			Catalog:  Fallback(),
			Warning:  "Failed to load token list. Please try again later.",
			Fallback: true,
		}
	}

	cat := Merge(upstream)
	l.logger.WithFields(logrus.Fields{
		"upstream": len(upstream),
		"catalog":  cat.Len(),
	}).Debug("token catalog loaded")

	return LoadResult{Catalog: cat}
}

// Import resolves a custom mint address against the upstream list.
func (l *Loader) Import(ctx context.Context, mint string) (Descriptor, error) {
	mint = strings.TrimSpace(mint)
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrInvalidMint, mint)
	}

	upstream, err := l.lister.Tokens(ctx)
	if err != nil {
		return Descriptor{}, fmt.Errorf("fetch token list: %w", err)
	}
	for _, t := range upstream {
		if t.Mint == mint {
			return fromJupiter(t), nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %s", ErrTokenNotFound, mint)
}
