package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/fartswap/fartswap-core/internal/constants"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication. Browsers cannot set headers on a
	// websocket handshake, so the key is also accepted as a query parameter.
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key,query:api_key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/tokens", h.ListTokens)
	v1.GET("/tokens/:mint", h.Token)
	v1.GET("/balances/:owner", h.Balance)
	v1.GET("/quote", h.Quote)
	v1.GET("/swaps/recent", h.RecentSwaps)

	poolGroup := v1.Group("/pools")
	poolGroup.GET("", h.PoolStats)
	poolGroup.POST("/refresh", h.PoolRefresh, middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(1.0 / 60), // one refresh a minute
		Burst:     1,
		ExpiresIn: 5 * time.Minute,
	})))

	sg := v1.Group("/sessions")
	sg.POST("", h.SessionCreate)
	sg.GET("/:id", h.SessionGet)
	sg.DELETE("/:id", h.SessionDelete)
	sg.GET("/:id/notifications", h.SessionNotifications)
	sg.GET("/:id/events", h.SessionEvents)
	sg.PUT("/:id/from", h.SessionSelectFrom())
	sg.PUT("/:id/to", h.SessionSelectTo())
	sg.POST("/:id/flip", h.SessionFlip())
	sg.PUT("/:id/amount", h.SessionAmount())
	sg.PUT("/:id/slippage", h.SessionSlippage())
	sg.POST("/:id/fraction", h.SessionFraction())
	sg.PUT("/:id/wallet", h.SessionConnectWallet())
	sg.DELETE("/:id/wallet", h.SessionDisconnectWallet())

	// Swaps sign and submit transactions: rate limited and gated by the
	// swaps.enabled flag.
	sg.POST("/:id/swap", h.SessionSwap,
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(0.5), // 1 request every 2 seconds
			Burst:     3,
			ExpiresIn: 2 * time.Minute,
		})),
		h.SwapGate,
	)

	flagGroup := v1.Group("/flags", h.RequireFlags)
	flagGroup.GET("", h.FlagsList)
	flagGroup.POST("", h.FlagsUpsert)
	flagGroup.GET("/:key", h.FlagsGet)
	flagGroup.PUT("/:key", h.FlagsUpdate)
	flagGroup.DELETE("/:key", h.FlagsDelete)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

// SwapGate rejects swaps while the swaps.enabled flag is false. An unset
// flag or an unreachable flag store leaves swaps enabled.
func (h *Handlers) SwapGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.Flags == nil {
			return next(c)
		}
		ctx, cancel := h.withTimeout(c.Request().Context(), 2*time.Second)
		enabled, err := h.Flags.Enabled(ctx, constants.FlagSwapsEnabled, true)
		cancel()
		if err != nil {
			h.Logger.WithError(err).Warn("flag lookup failed, allowing swap")
		}
		if !enabled {
			return h.err(c, http.StatusServiceUnavailable, "swaps are currently disabled", nil)
		}
		return next(c)
	}
}

// RequireFlags answers 503 when no flag store is configured.
func (h *Handlers) RequireFlags(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.Flags == nil {
			return h.err(c, http.StatusServiceUnavailable, "feature flags are not configured", nil)
		}
		return next(c)
	}
}
