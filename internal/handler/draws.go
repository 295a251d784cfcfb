package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"klotto/internal/lotto"
	"klotto/internal/service"
)

type DrawHandler struct {
	Service *service.LottoService
}

func (h *DrawHandler) Register(r *gin.Engine) {
	group := r.Group("/api/draws")
	group.GET("", h.list)
	group.GET("/:draw_no", h.get)
	group.POST("", h.add)
}

// @Summary List stored draws, newest first
// @Tags draws
// @Param limit query int false "page size (default 50, max 500)"
// @Param offset query int false "offset"
// @Success 200 {object} map[string]any
// @Router /api/draws [get]
func (h *DrawHandler) list(c *gin.Context) {
	limit := clamp(intQuery(c, "limit", 50), 1, 500)
	offset := max(intQuery(c, "offset", 0), 0)

	records := h.Service.Records()
	total := int64(len(records))
	end := min(offset+limit, len(records))
	page := []lotto.DrawRecord{}
	if offset < len(records) {
		page = records[offset:end]
	}
	Ok(c, page, paginationMeta(limit, offset, total))
}

// @Summary Get one draw
// @Tags draws
// @Param draw_no path int true "draw number"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/draws/{draw_no} [get]
func (h *DrawHandler) get(c *gin.Context) {
	drawNo, err := strconv.Atoi(c.Param("draw_no"))
	if err != nil || drawNo <= 0 {
		Error(c, http.StatusBadRequest, "invalid draw_no", nil)
		return
	}
	rec, err := h.Service.GetDraw(drawNo)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, rec, nil)
}

// @Summary Add a draw manually
// @Tags draws
// @Accept json
// @Param body body lotto.DrawInput true "draw"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Security BearerAuth
// @Router /api/draws [post]
func (h *DrawHandler) add(c *gin.Context) {
	var in lotto.DrawInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	if err := h.Service.AddRecord(c.Request.Context(), in); err != nil {
		serviceError(c, err)
		return
	}
	// A cache-only store keeps just the newest draws, so an old draw can be
	// accepted and immediately fall off the end.
	rec, err := h.Service.GetDraw(in.DrawNo)
	retained := err == nil
	if !retained {
		if rec, err = lotto.Normalize(in); err != nil {
			serviceError(c, err)
			return
		}
	}
	Ok(c, rec, map[string]any{"total": len(h.Service.Records()), "retained": retained})
}
