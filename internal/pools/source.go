package pools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fartswap/fartswap-core/internal/constants"
)

// Source returns the raw pool entries of the pool data service. Entries are
// kept raw so a malformed one can be dropped without failing the whole load.
type Source interface {
	Fetch(ctx context.Context) ([]json.RawMessage, error)
}

// HTTPSource reads the Raydium liquidity JSON.
type HTTPSource struct {
	URL               string
	IncludeUnofficial bool
	HTTP              *http.Client
}

func NewHTTPSource(url string, timeout time.Duration, includeUnofficial bool) *HTTPSource {
	url = strings.TrimSpace(url)
	if url == "" {
		url = constants.PoolListURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSource{
		URL:               url,
		IncludeUnofficial: includeUnofficial,
		HTTP:              &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	res, err := s.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pool list: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("fetch pool list: http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Official   []json.RawMessage `json:"official"`
		UnOfficial []json.RawMessage `json:"unOfficial"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pool list: %w", err)
	}
	if payload.Official == nil {
		return nil, fmt.Errorf("decode pool list: missing official pools")
	}

	out := payload.Official
	if s.IncludeUnofficial {
		out = append(out, payload.UnOfficial...)
	}
	return out, nil
}
