package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fartswap/fartswap-core/internal/constants"
)

// Client reads the Jupiter token metadata list.
type Client struct {
	ListURL string
	HTTP    *http.Client
}

func NewClient(listURL string, timeout time.Duration) *Client {
	listURL = strings.TrimSpace(listURL)
	if listURL == "" {
		listURL = constants.TokenListURL
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		ListURL: listURL,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("jupiter http %d", e.StatusCode)
	}
	if len(b) > 256 {
		b = b[:256]
	}
	return fmt.Sprintf("jupiter http %d: %s", e.StatusCode, b)
}

// Tokens fetches the full token list. The service has served both a bare
// array and an object with a "tokens" array; both are accepted.
func (c *Client) Tokens(ctx context.Context) ([]Token, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ListURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var wrapped struct {
			Tokens []Token `json:"tokens"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode jupiter token list: %w", err)
		}
		if wrapped.Tokens == nil {
			return nil, fmt.Errorf("invalid token list format from jupiter")
		}
		return wrapped.Tokens, nil
	}

	var out []Token
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode jupiter token list: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("invalid token list format from jupiter")
	}
	return out, nil
}
