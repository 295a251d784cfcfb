package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"klotto/internal/service"
)

type SyncHandler struct {
	Service *service.LottoService
	Hub     *service.EventHub
	Logger  *zap.Logger
	// BaseCtx outlives requests; runs started over HTTP stop with it.
	BaseCtx context.Context
	// AllowAnyOrigin skips the websocket origin check.
	AllowAnyOrigin bool
}

func (h *SyncHandler) Register(r *gin.Engine) {
	group := r.Group("/api/sync")
	group.POST("", h.start)
	group.GET("/state", h.state)
	group.GET("/estimate", h.estimate)
	group.GET("/events", h.events)
}

func (h *SyncHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// @Summary Start a background draw sync
// @Description Cancels and waits for any running sync first.
// @Tags sync
// @Success 202 {object} map[string]any
// @Security BearerAuth
// @Router /api/sync [post]
func (h *SyncHandler) start(c *gin.Context) {
	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	log := h.logger()
	run := h.Service.StartBackgroundSync(ctx, func(synced int) {
		log.Info("sync requested over http finished", zap.Int("synced", synced))
	})
	Accepted(c, gin.H{"run_id": run.ID}, nil)
}

// @Summary Last persisted sync state and the in-flight run
// @Tags sync
// @Success 200 {object} map[string]any
// @Router /api/sync/state [get]
func (h *SyncHandler) state(c *gin.Context) {
	state, err := h.Service.SyncState(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	running := false
	runID := ""
	if run := h.Service.CurrentSync(); run != nil {
		runID = run.ID
		select {
		case <-run.Done():
		default:
			running = true
		}
	}
	Ok(c, gin.H{
		"state":        state,
		"running":      running,
		"run_id":       runID,
		"last_draw_no": h.Service.LastDrawNo(c.Request.Context()),
	}, nil)
}

// @Summary Estimated current draw versus the stored watermark
// @Tags sync
// @Success 200 {object} map[string]any
// @Router /api/sync/estimate [get]
func (h *SyncHandler) estimate(c *gin.Context) {
	estimated := h.Service.EstimateCurrentDraw(time.Now())
	last := h.Service.LastDrawNo(c.Request.Context())
	Ok(c, gin.H{
		"estimated":    estimated,
		"last_draw_no": last,
		"missing":      max(estimated-last, 0),
	}, nil)
}

// @Summary Stream sync events over a websocket
// @Tags sync
// @Router /api/sync/events [get]
func (h *SyncHandler) events(c *gin.Context) {
	if h.Hub == nil {
		Error(c, http.StatusServiceUnavailable, "event hub unavailable", nil)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: h.AllowAnyOrigin,
	})
	if err != nil {
		h.logger().Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	events, unsubscribe := h.Hub.Subscribe(32)
	defer unsubscribe()

	// Clients only listen; CloseRead cancels ctx when they go away.
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
