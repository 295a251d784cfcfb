package handler

import (
	"github.com/gin-gonic/gin"

	"klotto/internal/analysis"
	"klotto/internal/service"
)

type StatsHandler struct {
	Service *service.LottoService
}

func (h *StatsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/stats")
	group.GET("/frequency", h.frequency)
	group.GET("/ranges", h.ranges)
	group.GET("/pairs", h.pairs)
	group.GET("/trend", h.trend)
}

// @Summary Hot and cold numbers with per-number counts
// @Tags stats
// @Success 200 {object} map[string]any
// @Router /api/stats/frequency [get]
func (h *StatsHandler) frequency(c *gin.Context) {
	freq := h.Service.GetFrequencyAnalysis()
	Ok(c, freq, map[string]any{"total_draws": freq.TotalDraws})
}

// @Summary Main-number distribution per range bucket
// @Tags stats
// @Success 200 {object} map[string]any
// @Router /api/stats/ranges [get]
func (h *StatsHandler) ranges(c *gin.Context) {
	buckets := h.Service.GetRangeDistribution()
	if buckets == nil {
		buckets = []analysis.RangeBucket{}
	}
	Ok(c, buckets, nil)
}

// @Summary Most frequent number pairs
// @Tags stats
// @Success 200 {object} map[string]any
// @Router /api/stats/pairs [get]
func (h *StatsHandler) pairs(c *gin.Context) {
	out := h.Service.GetPairAnalysis()
	if out.TopPairs == nil {
		out.TopPairs = []analysis.Pair{}
	}
	Ok(c, out, nil)
}

// @Summary Most recent draws
// @Tags stats
// @Param count query int false "number of draws (default 10)"
// @Success 200 {object} map[string]any
// @Router /api/stats/trend [get]
func (h *StatsHandler) trend(c *gin.Context) {
	count := intQuery(c, "count", analysis.DefaultRecent)
	items := h.Service.GetRecentTrend(count)
	Ok(c, items, map[string]any{"count": len(items)})
}
