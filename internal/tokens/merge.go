package tokens

import (
	"strings"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/jupiter"
)

// Merge builds a catalog from the upstream list. Pinned tokens always come
// first and take their logo from upstream when it has one; upstream entries
// whose mint collides with a pinned token are dropped.
func Merge(upstream []jupiter.Token) *Catalog {
	byMint := make(map[string]jupiter.Token, len(upstream))
	for _, t := range upstream {
		if _, seen := byMint[t.Mint]; !seen {
			byMint[t.Mint] = t
		}
	}

	pinned := make([]Descriptor, 0, len(constants.PinnedTokens))
	for _, p := range constants.PinnedTokens {
		logo := p.FallbackLogo
		if t, ok := byMint[p.Mint]; ok && strings.TrimSpace(t.LogoURI) != "" {
			logo = t.LogoURI
		}
		pinned = append(pinned, Descriptor{
			Symbol:   p.Symbol,
			Name:     p.Name,
			Mint:     p.Mint,
			Decimals: p.Decimals,
			LogoURI:  logo,
		})
	}

	rest := make([]Descriptor, 0, len(upstream))
	for _, t := range upstream {
		if strings.TrimSpace(t.Mint) == "" {
			continue
		}
		rest = append(rest, fromJupiter(t))
	}

	return newCatalog(pinned, rest)
}

// Fallback is the catalog used when the upstream list is unavailable.
func Fallback() *Catalog {
	pinned := make([]Descriptor, 0, len(constants.PinnedTokens))
	for _, p := range constants.PinnedTokens {
		pinned = append(pinned, Descriptor{
			Symbol:   p.Symbol,
			Name:     p.Name,
			Mint:     p.Mint,
			Decimals: p.Decimals,
			LogoURI:  p.OfflineLogo,
		})
	}
	return newCatalog(pinned, nil)
}

func fromJupiter(t jupiter.Token) Descriptor {
	return Descriptor{
		Symbol:   t.Symbol,
		Name:     t.Name,
		Mint:     t.Mint,
		Decimals: t.Decimals,
		LogoURI:  t.LogoURI,
	}
}
