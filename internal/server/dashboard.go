package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/overview"
	"github.com/mkoziy/portfolio/internal/repositories"
)

// Overview is satisfied by *overview.Service.
type Overview interface {
	Financial(ctx context.Context) (*overview.Financial, error)
	Portfolio(ctx context.Context) (*overview.Portfolio, error)
	CompanyStatements(ctx context.Context, symbol string, limit int) (*overview.CompanyStatements, error)
}

// DashboardHandler serves the read endpoints behind the dashboard pages.
type DashboardHandler struct {
	Overview Overview
	DB       *bun.DB
	Logger   zerolog.Logger
}

func (h *DashboardHandler) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/financial", h.financial)
	api.GET("/portfolio", h.portfolio)
	api.GET("/companies/:symbol/statements", h.statements)
	api.GET("/sync/logs", h.syncLogs)
	api.GET("/sync/logs/:batchId", h.syncLogSymbols)
}

func (h *DashboardHandler) financial(c *gin.Context) {
	out, err := h.Overview.Financial(c.Request.Context())
	if err != nil {
		h.fail(c, err, "financial overview")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) portfolio(c *gin.Context) {
	out, err := h.Overview.Portfolio(c.Request.Context())
	if err != nil {
		h.fail(c, err, "portfolio overview")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) statements(c *gin.Context) {
	limit := intQuery(c, "limit", repositories.DefaultStatementLimit)
	out, err := h.Overview.CompanyStatements(c.Request.Context(), c.Param("symbol"), limit)
	if errors.Is(err, repositories.ErrCompanyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	if err != nil {
		h.fail(c, err, "company statements")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) syncLogs(c *gin.Context) {
	limit := intQuery(c, "limit", repositories.DefaultSyncLogLimit)
	logs, err := repositories.GetSyncLogs(c.Request.Context(), h.DB, limit)
	if err != nil {
		h.fail(c, err, "sync logs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *DashboardHandler) syncLogSymbols(c *gin.Context) {
	batchID := c.Param("batchId")
	rows, err := repositories.GetSyncLogSymbols(c.Request.Context(), h.DB, batchID)
	if err != nil {
		h.fail(c, err, "sync log symbols")
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batchId": batchID, "symbols": rows})
}

func (h *DashboardHandler) fail(c *gin.Context, err error, what string) {
	h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg(what)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			return i
		}
	}
	return def
}
