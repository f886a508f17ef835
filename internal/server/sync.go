package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mkoziy/portfolio/internal/syncer"
)

// SyncTokenHeader carries the shared secret for the admin trigger.
const SyncTokenHeader = "x-sync-token"

// SyncRunner is satisfied by *syncer.Service.
type SyncRunner interface {
	Run(ctx context.Context, symbols []string, opts syncer.Options) (*syncer.Result, error)
}

// SyncHandler serves the admin sync trigger.
type SyncHandler struct {
	Token  string
	Syncer SyncRunner
	Logger zerolog.Logger
}

type syncResponse struct {
	OK bool `json:"ok"`
	*syncer.Result
}

func (h *SyncHandler) Register(r *gin.Engine) {
	r.POST("/api/admin/sync", h.requireToken, h.sync)
}

// requireToken rejects the request unless a token is configured and the
// header matches it. Rejections are not audited.
func (h *SyncHandler) requireToken(c *gin.Context) {
	got := c.GetHeader(SyncTokenHeader)
	if h.Token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (h *SyncHandler) sync(c *gin.Context) {
	// A dropped client must not abort a batch halfway.
	ctx := context.WithoutCancel(c.Request.Context())

	res, err := h.Syncer.Run(ctx, splitSymbols(c.Query("symbols")), syncer.Options{})
	if err != nil {
		h.Logger.Error().Err(err).Msg("admin sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Sync failed"})
		return
	}
	c.JSON(http.StatusOK, syncResponse{OK: true, Result: res})
}

// splitSymbols parses a comma-separated list, dropping blanks.
func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
