package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mkoziy/portfolio/internal/sources/fmp"
)

// QuoteSource is satisfied by *fmp.Client.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) (fmp.QuoteResult, error)
}

// MarketHandler serves live quotes.
type MarketHandler struct {
	Quotes QuoteSource
	Logger zerolog.Logger
}

func (h *MarketHandler) Register(r *gin.Engine) {
	r.GET("/api/market/quotes", h.quotes)
}

// quotes always answers 200; an upstream problem yields an empty map.
func (h *MarketHandler) quotes(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	if symbols == nil {
		symbols = []string{}
	}

	res, err := h.Quotes.Quotes(c.Request.Context(), symbols)
	if err != nil {
		h.Logger.Warn().Err(err).Strs("symbols", symbols).Msg("quote lookup failed")
		res = fmp.QuoteResult{}
	}
	quotes := res.Quotes
	if quotes == nil {
		quotes = map[string]fmp.Quote{}
	}

	c.JSON(http.StatusOK, gin.H{"symbols": symbols, "quotes": quotes})
}
