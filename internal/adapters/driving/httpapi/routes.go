package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func registerRoutes(r gin.IRouter, cfg Config) {
	h := &handlers{cfg: cfg}

	r.GET("/healthz", h.health)

	oauth := r.Group("/oauth")
	if cfg.RateLimit > 0 {
		oauth.Use(newClientLimiter(cfg.RateLimit, cfg.RateBurst).middleware())
	}
	oauth.GET("/start/:provider", h.start)
	oauth.GET("/callback/:provider", h.callback)
	oauth.GET("/connections", h.connections)
	oauth.DELETE("/connections/:provider", h.disconnect)
}

type handlers struct {
	cfg Config
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) start(c *gin.Context) {
	provider := c.Param("provider")

	req, err := h.cfg.Authorizations.Start(c.Request.Context(), provider)
	if err != nil {
		var cfgErr *domain.ConfigError
		switch {
		case errors.Is(err, domain.ErrUnknownProvider):
			c.JSON(http.StatusNotFound, errorBody{Error: "unknown provider: " + provider})
		case errors.As(err, &cfgErr):
			c.JSON(http.StatusInternalServerError, errorBody{Error: cfgErr.Error()})
		default:
			logger.Error("start authorization for %s: %v", provider, err)
			c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to start authorization"})
		}
		return
	}

	logger.Debug("authorization started %s", logger.Fields{"provider": req.Provider, "redirect_uri": req.RedirectURI})
	c.Redirect(http.StatusFound, req.URL)
}

func (h *handlers) callback(c *gin.Context) {
	outcome := h.cfg.Callbacks.HandleCallback(c.Request.Context(), c.Param("provider"), domain.CallbackParams{
		Code:             c.Query("code"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
		State:            c.Query("state"),
	})
	c.Redirect(http.StatusFound, outcome.RedirectURL)
}

func (h *handlers) connections(c *gin.Context) {
	statuses, err := h.cfg.Tokens.Connections(c.Request.Context())
	if err != nil {
		logger.Error("list connections: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to list connections"})
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *handlers) disconnect(c *gin.Context) {
	provider := c.Param("provider")
	if _, err := h.cfg.Registry.Lookup(provider); err != nil {
		c.JSON(http.StatusNotFound, errorBody{Error: "unknown provider: " + provider})
		return
	}

	if err := h.cfg.Tokens.Remove(c.Request.Context(), provider); err != nil {
		logger.Error("disconnect %s: %v", provider, err)
		c.JSON(http.StatusInternalServerError, errorBody{Error: "failed to disconnect"})
		return
	}
	c.Status(http.StatusNoContent)
}
