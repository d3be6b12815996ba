package tokens

import (
	"strings"

	"github.com/fartswap/fartswap-core/internal/constants"
)

// Descriptor identifies one fungible token. Unique by Mint within a Catalog.
type Descriptor struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// IsNativeSOL reports whether the descriptor is the wrapped SOL mint.
func (d Descriptor) IsNativeSOL() bool {
	return d.Mint == constants.MintSOL
}

// Catalog is an ordered, read-only token list: pinned tokens first, then the
// upstream list in source order. Build a new one rather than mutating.
type Catalog struct {
	tokens []Descriptor
	index  map[string]int
	pinned int
}

func newCatalog(pinned, rest []Descriptor) *Catalog {
	c := &Catalog{
		tokens: make([]Descriptor, 0, len(pinned)+len(rest)),
		index:  make(map[string]int, len(pinned)+len(rest)),
		pinned: len(pinned),
	}
	for _, d := range pinned {
		c.index[d.Mint] = len(c.tokens)
		c.tokens = append(c.tokens, d)
	}
	for _, d := range rest {
		if _, dup := c.index[d.Mint]; dup {
			continue
		}
		c.index[d.Mint] = len(c.tokens)
		c.tokens = append(c.tokens, d)
	}
	return c
}

// Tokens returns a copy of every token in catalog order.
func (c *Catalog) Tokens() []Descriptor {
	out := make([]Descriptor, len(c.tokens))
	copy(out, c.tokens)
	return out
}

func (c *Catalog) Len() int { return len(c.tokens) }

// Pinned returns the default tokens in declaration order.
func (c *Catalog) Pinned() []Descriptor {
	out := make([]Descriptor, c.pinned)
	copy(out, c.tokens[:c.pinned])
	return out
}

// Find looks a token up by mint.
func (c *Catalog) Find(mint string) (Descriptor, bool) {
	i, ok := c.index[strings.TrimSpace(mint)]
	if !ok {
		return Descriptor{}, false
	}
	return c.tokens[i], true
}

// IsPinned reports whether mint is one of the default tokens.
func (c *Catalog) IsPinned(mint string) bool {
	i, ok := c.index[mint]
	return ok && i < c.pinned
}

// Search matches the query case-insensitively against symbol, name and mint,
// preserving catalog order. An empty query returns everything. limit <= 0
// means no limit.
func (c *Catalog) Search(query string, limit int) []Descriptor {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Descriptor, 0)
	for _, d := range c.tokens {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q == "" ||
			strings.Contains(strings.ToLower(d.Symbol), q) ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Mint), q) {
			out = append(out, d)
		}
	}
	return out
}
