package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/hooks"
	"github.com/ninjahub/ninjahub-core/internal/site"
)

type assetBus interface {
	Manifest() hooks.Manifest
	ManifestFor(page string) hooks.Manifest
	Localization(handle, object string) (map[string]any, bool)
	ApplyFilters(ctx context.Context, hook string, value any, args ...any) any
}

// SiteHandler exposes the flushed asset manifest and localizations.
type SiteHandler struct {
	bus    assetBus
	logger *slog.Logger
}

func NewSiteHandler(bus assetBus, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{bus: bus, logger: logger.With("component", "site_handler")}
}

// GET /assets/manifest?page=<slug>
// Without page every asset is listed.
func (h *SiteHandler) Manifest(c *gin.Context) {
	if page := c.Query("page"); page != "" {
		c.JSON(http.StatusOK, h.bus.ManifestFor(page))
		return
	}
	c.JSON(http.StatusOK, h.bus.Manifest())
}

// PublicGlobals serves GET /nh-globals.js.
func (h *SiteHandler) PublicGlobals(c *gin.Context) {
	h.globals(c, site.HandlePublicScriptMain)
}

// AdminGlobals serves GET /admin/nh-globals.js.
func (h *SiteHandler) AdminGlobals(c *gin.Context) {
	h.globals(c, site.HandleAdminScriptMain)
}

func (h *SiteHandler) globals(c *gin.Context, handle string) {
	data, found := h.bus.Localization(handle, site.GlobalsObject)
	if !found {
		c.Status(http.StatusNotFound)
		return
	}
	b, err := json.Marshal(data)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "encode globals", "handle", handle, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8",
		[]byte("var "+site.GlobalsObject+" = "+string(b)+";\n"))
}

// GET /admin/recaptcha-forms
func (h *SiteHandler) RecaptchaForms(c *gin.Context) {
	forms, _ := h.bus.ApplyFilters(c.Request.Context(), site.FilterRecaptchaForms, map[string]site.RecaptchaForm{}).(map[string]site.RecaptchaForm)
	if forms == nil {
		forms = map[string]site.RecaptchaForm{}
	}
	c.JSON(http.StatusOK, forms)
}
