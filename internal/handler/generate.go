package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"klotto/internal/generator"
	"klotto/internal/service"
)

const maxBalancedSets = 20

type GenerateHandler struct {
	Service     *service.LottoService
	DefaultSets int
	MaxSets     int
}

func (h *GenerateHandler) Register(r *gin.Engine) {
	r.POST("/api/generate/smart", h.smart)
	r.POST("/api/generate/balanced", h.balanced)
	r.POST("/api/analysis/check", h.check)
}

// bindConstraints accepts an empty body as "no constraints".
func bindConstraints(c *gin.Context, out *generator.Constraints) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// @Summary Generate one frequency-weighted set
// @Tags generate
// @Accept json
// @Param body body generator.Constraints false "constraints"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Security BearerAuth
// @Router /api/generate/smart [post]
func (h *GenerateHandler) smart(c *gin.Context) {
	req := generator.Constraints{PreferHot: true, BalanceMode: true}
	if err := bindConstraints(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	set, err := h.Service.GenerateSmartNumbers(req)
	if errors.Is(err, generator.ErrInsufficientCandidates) {
		Ok(c, set, map[string]any{"partial": true, "warning": err.Error()})
		return
	}
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, set, nil)
}

// @Summary Generate several sets across hot, cold and unbalanced presets
// @Tags generate
// @Accept json
// @Param count query int false "number of sets (1..20)"
// @Param body body generator.Constraints false "fixed and excluded numbers"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Security BearerAuth
// @Router /api/generate/balanced [post]
func (h *GenerateHandler) balanced(c *gin.Context) {
	def := h.DefaultSets
	if def <= 0 {
		def = 5
	}
	limit := h.MaxSets
	if limit <= 0 || limit > maxBalancedSets {
		limit = maxBalancedSets
	}
	count := intQuery(c, "count", def)
	if count < 1 || count > limit {
		Error(c, http.StatusBadRequest, "count out of range", map[string]any{"min": 1, "max": limit})
		return
	}

	var req generator.Constraints
	if err := bindConstraints(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	sets, err := h.Service.GenerateBalancedSet(count, req)
	if err != nil && !errors.Is(err, generator.ErrInsufficientCandidates) {
		serviceError(c, err)
		return
	}
	presets := make([]string, 0, len(sets))
	for i := range sets {
		presets = append(presets, generator.Presets[i%len(generator.Presets)].Name)
	}
	meta := map[string]any{"count": len(sets), "presets": presets}
	if err != nil {
		meta["partial"] = true
		meta["partial_sets"] = generator.PartialIndexes(sets)
		meta["warning"] = err.Error()
	}
	Ok(c, sets, meta)
}

type checkRequest struct {
	Numbers []int `json:"numbers"`
	DrawNo  int   `json:"draw_no"`
}

// @Summary Score a set and compare it with a stored draw
// @Tags analysis
// @Accept json
// @Param body body checkRequest true "numbers and optional draw_no (latest when omitted)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Security BearerAuth
// @Router /api/analysis/check [post]
func (h *GenerateHandler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	res, err := h.Service.CheckNumbers(req.Numbers, req.DrawNo)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}
