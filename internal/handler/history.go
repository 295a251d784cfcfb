package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"klotto/internal/service"
)

type HistoryHandler struct {
	History *service.HistoryService
}

func (h *HistoryHandler) Register(r *gin.Engine) {
	group := r.Group("/api/history")
	group.GET("", h.list)
	group.GET("/stats", h.stats)
	group.POST("/check", h.check)
	group.DELETE("", h.clear)
}

// @Summary Generated sets, newest first
// @Tags history
// @Param limit query int false "number of entries (default 50, max 500)"
// @Success 200 {object} map[string]any
// @Router /api/history [get]
func (h *HistoryHandler) list(c *gin.Context) {
	limit := clamp(intQuery(c, "limit", 50), 1, service.DefaultHistoryEntries)
	items := h.History.Recent(limit)
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Per-number counts across generated sets
// @Tags history
// @Success 200 {object} map[string]any
// @Router /api/history/stats [get]
func (h *HistoryHandler) stats(c *gin.Context) {
	Ok(c, h.History.Statistics(), nil)
}

type numbersRequest struct {
	Numbers []int  `json:"numbers"`
	Memo    string `json:"memo"`
}

// @Summary Whether a combination was generated before
// @Tags history
// @Accept json
// @Param body body numbersRequest true "numbers"
// @Success 200 {object} map[string]any
// @Router /api/history/check [post]
func (h *HistoryHandler) check(c *gin.Context) {
	var req numbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	Ok(c, gin.H{"duplicate": h.History.IsDuplicate(req.Numbers)}, nil)
}

// @Summary Clear the generated-set history
// @Tags history
// @Success 200 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Security BearerAuth
// @Router /api/history [delete]
func (h *HistoryHandler) clear(c *gin.Context) {
	if err := h.History.Clear(); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, gin.H{"cleared": true}, nil)
}

type FavoritesHandler struct {
	Favorites *service.FavoritesService
}

func (h *FavoritesHandler) Register(r *gin.Engine) {
	group := r.Group("/api/favorites")
	group.GET("", h.list)
	group.POST("", h.add)
	group.DELETE("/:index", h.remove)
}

// @Summary Saved favorite sets in insertion order
// @Tags favorites
// @Success 200 {object} map[string]any
// @Router /api/favorites [get]
func (h *FavoritesHandler) list(c *gin.Context) {
	items := h.Favorites.All()
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Save a favorite set
// @Tags favorites
// @Accept json
// @Param body body numbersRequest true "numbers and memo"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Security BearerAuth
// @Router /api/favorites [post]
func (h *FavoritesHandler) add(c *gin.Context) {
	var req numbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, index, err := h.Favorites.Add(req.Numbers, req.Memo)
	if err != nil {
		serviceError(c, err)
		return
	}
	if index < 0 {
		Error(c, http.StatusConflict, "already a favorite", nil)
		return
	}
	Ok(c, item, map[string]any{"index": index})
}

// @Summary Remove a favorite by position
// @Tags favorites
// @Param index path int true "zero-based position"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Security BearerAuth
// @Router /api/favorites/{index} [delete]
func (h *FavoritesHandler) remove(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid index", nil)
		return
	}
	if err := h.Favorites.Remove(index); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, gin.H{"removed": index}, map[string]any{"count": len(h.Favorites.All())})
}
