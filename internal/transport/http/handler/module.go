package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

type ModuleLister interface {
	Count(ctx context.Context, in usecase.ListInput) (int, error)
	LoadMore(ctx context.Context, page, limit, count int) (usecase.LoadMoreResult, error)
}

// ModuleListers maps a post type to the module serving it.
type ModuleListers map[string]ModuleLister

// ModuleHandler pages through published posts of the registered types.
type ModuleHandler struct {
	modules ModuleListers
	logger  *slog.Logger
}

func NewModuleHandler(modules ModuleListers, logger *slog.Logger) *ModuleHandler {
	return &ModuleHandler{modules: modules, logger: logger.With("component", "module_handler")}
}

type loadMoreRequest struct {
	PostType string `form:"post_type" json:"post_type" binding:"required"`
	Page     int    `form:"page"      json:"page"      binding:"min=1"`
	Limit    int    `form:"limit"     json:"limit"     binding:"min=0,max=100"`
}

// POST /ajax/load-more
func (h *ModuleHandler) LoadMore(c *gin.Context) {
	var req loadMoreRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	m, found := h.modules[req.PostType]
	if !found {
		fail(c, http.StatusNotFound, "No posts available.")
		return
	}

	ctx := c.Request.Context()
	count, err := m.Count(ctx, usecase.ListInput{})
	if err != nil {
		respondError(c, h.logger, "count posts", err)
		return
	}
	res, err := m.LoadMore(ctx, req.Page, req.Limit, count)
	if err != nil {
		respondError(c, h.logger, "load more", err)
		return
	}
	ok(c, "", res)
}
