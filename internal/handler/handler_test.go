package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"klotto/internal/client/dhlottery"
	"klotto/internal/config"
	"klotto/internal/db"
	"klotto/internal/drawstore"
	"klotto/internal/lotto"
	"klotto/internal/service"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type okFetcher struct{}

func (okFetcher) FetchDraw(_ context.Context, drawNo int) (*dhlottery.Draw, error) {
	return &dhlottery.Draw{DrawNo: drawNo, Numbers: []int{3, 9, 17, 20, 31, 44}, Bonus: 5}, nil
}

type fixture struct {
	engine *gin.Engine
	svc    *service.LottoService
	hub    *service.EventHub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithStore(t, drawstore.New(nil, nil, drawstore.Options{}))
}

func newFixtureWithStore(t *testing.T, store *drawstore.Store) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store.Load(context.Background())
	kst := time.FixedZone("KST", 9*60*60)
	hub := service.NewEventHub()
	syncSvc := &service.DrawSyncService{
		Fetcher: okFetcher{},
		Hub:     hub,
		Estimator: service.DrawEstimator{
			Epoch:      time.Date(2002, 12, 7, 0, 0, 0, 0, kst),
			DrawDay:    time.Saturday,
			CutoffHour: 21,
			Location:   kst,
		},
		Now: func() time.Time { return time.Date(2002, 12, 21, 22, 0, 0, 0, kst) },
	}
	svc := service.NewLottoService(store, nil, syncSvc, nil)
	svc.History = service.NewHistoryService("", 0, nil)

	engine := gin.New()
	(&HealthHandler{}).Register(engine)
	(&DrawHandler{Service: svc}).Register(engine)
	(&StatsHandler{Service: svc}).Register(engine)
	(&GenerateHandler{Service: svc, DefaultSets: 5, MaxSets: 20}).Register(engine)
	(&SyncHandler{Service: svc, Hub: hub, BaseCtx: context.Background()}).Register(engine)
	(&HistoryHandler{History: svc.History}).Register(engine)
	(&FavoritesHandler{Favorites: service.NewFavoritesService("", nil)}).Register(engine)
	return fixture{engine: engine, svc: svc, hub: hub}
}

func (f fixture) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func TestReadyWithoutDB(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "cache") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestReadyWithDB(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, err := db.Open(config.DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "lotto.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	engine := gin.New()
	(&HealthHandler{DB: conn}).Register(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	if err := db.Close(conn); err != nil {
		t.Fatalf("close: %v", err)
	}
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed db status=%d want=503", w.Code)
	}
}

func TestDraws_AddGetList(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/draws", `{"draw_no":1100,"date":"20231230","numbers":[44,3,17,9,31,20],"bonus":5}`)
	if code != http.StatusOK || env.Code != 0 {
		t.Fatalf("add status=%d env=%+v", code, env)
	}
	var rec lotto.DrawRecord
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Numbers[0] != 3 || rec.Date != "2023-12-30" {
		t.Fatalf("record=%+v", rec)
	}

	code, env = f.do(t, http.MethodPost, "/api/draws", `{"draw_no":2,"numbers":[7,45,1,1,2,3],"bonus":10}`)
	if code != http.StatusBadRequest || env.Code != http.StatusBadRequest {
		t.Fatalf("invalid add status=%d env=%+v", code, env)
	}

	code, _ = f.do(t, http.MethodGet, "/api/draws/1100", "")
	if code != http.StatusOK {
		t.Fatalf("get status=%d", code)
	}
	code, _ = f.do(t, http.MethodGet, "/api/draws/7", "")
	if code != http.StatusNotFound {
		t.Fatalf("missing status=%d want=404", code)
	}
	code, _ = f.do(t, http.MethodGet, "/api/draws/abc", "")
	if code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d want=400", code)
	}

	code, env = f.do(t, http.MethodGet, "/api/draws?limit=10", "")
	if code != http.StatusOK || env.Meta["total"].(float64) != 1 {
		t.Fatalf("list status=%d meta=%v", code, env.Meta)
	}
}

func TestStats_EmptyStore(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/stats/frequency", "/api/stats/ranges", "/api/stats/pairs", "/api/stats/trend?count=3"} {
		code, env := f.do(t, http.MethodGet, path, "")
		if code != http.StatusOK || env.Code != 0 {
			t.Fatalf("%s status=%d env=%+v", path, code, env)
		}
	}
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/generate/smart", `{"fixed_numbers":[7],"excluded_numbers":[8]}`)
	if code != http.StatusOK {
		t.Fatalf("smart status=%d env=%+v", code, env)
	}
	var set []int
	if err := json.Unmarshal(env.Data, &set); err != nil || len(set) != 6 {
		t.Fatalf("set=%v err=%v", set, err)
	}

	code, _ = f.do(t, http.MethodPost, "/api/generate/smart", `{"fixed_numbers":[7],"excluded_numbers":[7]}`)
	if code != http.StatusBadRequest {
		t.Fatalf("conflicting constraints status=%d want=400", code)
	}

	code, env = f.do(t, http.MethodPost, "/api/generate/balanced?count=4", "")
	if code != http.StatusOK {
		t.Fatalf("balanced status=%d", code)
	}
	var sets [][]int
	if err := json.Unmarshal(env.Data, &sets); err != nil || len(sets) != 4 {
		t.Fatalf("sets=%v err=%v", sets, err)
	}

	for _, q := range []string{"0", "21"} {
		code, _ = f.do(t, http.MethodPost, "/api/generate/balanced?count="+q, "")
		if code != http.StatusBadRequest {
			t.Fatalf("count=%s status=%d want=400", q, code)
		}
	}
}

func TestAnalysisCheck(t *testing.T) {
	f := newFixture(t)
	code, env := f.do(t, http.MethodPost, "/api/analysis/check", `{"numbers":[5,12,19,28,33,41]}`)
	if code != http.StatusOK {
		t.Fatalf("status=%d env=%+v", code, env)
	}
	var res service.CheckResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Analysis.Score != 100 || !res.Analysis.IsOptimal {
		t.Fatalf("analysis=%+v", res.Analysis)
	}
	for _, body := range []string{`{"numbers":[1,2,3]}`, `{"numbers":[1,1,2,3,4,5]}`} {
		code, _ = f.do(t, http.MethodPost, "/api/analysis/check", body)
		if code != http.StatusBadRequest {
			t.Fatalf("%s status=%d want=400", body, code)
		}
	}
}

func TestDraws_AddBelowCacheWindow(t *testing.T) {
	store := drawstore.New(nil, drawstore.NewJSONCache(filepath.Join(t.TempDir(), "stats.json"), 1), drawstore.Options{})
	f := newFixtureWithStore(t, store)

	code, env := f.do(t, http.MethodPost, "/api/draws", `{"draw_no":1100,"numbers":[1,2,3,4,5,6],"bonus":7}`)
	if code != http.StatusOK || env.Meta["retained"] != true {
		t.Fatalf("add newest status=%d meta=%v", code, env.Meta)
	}
	code, env = f.do(t, http.MethodPost, "/api/draws", `{"draw_no":1000,"numbers":[6,5,4,3,2,1],"bonus":7}`)
	if code != http.StatusOK || env.Meta["retained"] != false {
		t.Fatalf("add old status=%d meta=%v", code, env.Meta)
	}
	var rec lotto.DrawRecord
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.DrawNo != 1000 || rec.Numbers[0] != 1 {
		t.Fatalf("echoed record=%+v", rec)
	}
}

func TestGenerate_BalancedPartialBatch(t *testing.T) {
	f := newFixture(t)
	for no := 1; no <= 3; no++ {
		in := lotto.DrawInput{DrawNo: no, Numbers: []int{2, 4, 6, 8, 10, 10 + 2*no}, Bonus: 1}
		if err := f.svc.AddRecord(context.Background(), in); err != nil {
			t.Fatalf("add %d: %v", no, err)
		}
	}
	odds := make([]string, 0, 23)
	for n := 1; n <= 45; n += 2 {
		odds = append(odds, strconv.Itoa(n))
	}
	body := `{"excluded_numbers":[` + strings.Join(odds, ",") + `]}`
	code, env := f.do(t, http.MethodPost, "/api/generate/balanced?count=5", body)
	if code != http.StatusOK || env.Meta["partial"] != true {
		t.Fatalf("status=%d meta=%v", code, env.Meta)
	}
	var sets [][]int
	if err := json.Unmarshal(env.Data, &sets); err != nil || len(sets) != 5 {
		t.Fatalf("sets=%v err=%v want 5", sets, err)
	}
	if partial, _ := env.Meta["partial_sets"].([]any); len(partial) != 4 {
		t.Fatalf("partial_sets=%v want 4 entries", env.Meta["partial_sets"])
	}
}

func TestHistoryAndFavorites(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/generate/smart", "")
	if code != http.StatusOK {
		t.Fatalf("smart status=%d", code)
	}
	var set []int
	if err := json.Unmarshal(env.Data, &set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw, _ := json.Marshal(map[string]any{"numbers": set})

	code, env = f.do(t, http.MethodGet, "/api/history", "")
	if code != http.StatusOK || env.Meta["count"].(float64) != 1 {
		t.Fatalf("history status=%d meta=%v", code, env.Meta)
	}
	code, env = f.do(t, http.MethodPost, "/api/history/check", string(raw))
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"duplicate":true`) {
		t.Fatalf("check status=%d data=%s", code, env.Data)
	}
	code, env = f.do(t, http.MethodGet, "/api/history/stats", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"total_sets":1`) {
		t.Fatalf("stats status=%d data=%s", code, env.Data)
	}
	if code, _ = f.do(t, http.MethodDelete, "/api/history", ""); code != http.StatusOK {
		t.Fatalf("clear status=%d", code)
	}
	if _, env = f.do(t, http.MethodGet, "/api/history", ""); env.Meta["count"].(float64) != 0 {
		t.Fatalf("history not cleared: %v", env.Meta)
	}

	body := `{"numbers":[6,5,4,3,2,1],"memo":"lucky"}`
	if code, env = f.do(t, http.MethodPost, "/api/favorites", body); code != http.StatusOK || env.Meta["index"].(float64) != 0 {
		t.Fatalf("favorite add status=%d meta=%v", code, env.Meta)
	}
	if code, _ = f.do(t, http.MethodPost, "/api/favorites", body); code != http.StatusConflict {
		t.Fatalf("duplicate favorite status=%d want=409", code)
	}
	if code, _ = f.do(t, http.MethodPost, "/api/favorites", `{"numbers":[1,1,2,3,4,5]}`); code != http.StatusBadRequest {
		t.Fatalf("invalid favorite status=%d want=400", code)
	}
	if code, _ = f.do(t, http.MethodDelete, "/api/favorites/3", ""); code != http.StatusNotFound {
		t.Fatalf("missing favorite status=%d want=404", code)
	}
	if code, _ = f.do(t, http.MethodDelete, "/api/favorites/0", ""); code != http.StatusOK {
		t.Fatalf("remove status=%d", code)
	}
	if _, env = f.do(t, http.MethodGet, "/api/favorites", ""); env.Meta["count"].(float64) != 0 {
		t.Fatalf("favorites=%v", env.Meta)
	}
}

func TestSync_StartAndEstimate(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/sync/estimate", "")
	if code != http.StatusOK || env.Code != 0 {
		t.Fatalf("estimate status=%d", code)
	}

	code, env = f.do(t, http.MethodPost, "/api/sync", "")
	if code != http.StatusAccepted || env.Message != "accepted" {
		t.Fatalf("start status=%d env=%+v", code, env)
	}
	run := f.svc.CurrentSync()
	if run == nil {
		t.Fatalf("no run tracked")
	}
	if res := run.Wait(); res.Synced != 3 {
		t.Fatalf("synced=%d want=3", res.Synced)
	}

	code, env = f.do(t, http.MethodGet, "/api/sync/state", "")
	if code != http.StatusOK {
		t.Fatalf("state status=%d", code)
	}
	var state struct {
		Running    bool `json:"running"`
		LastDrawNo int  `json:"last_draw_no"`
	}
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Running || state.LastDrawNo != 3 {
		t.Fatalf("state=%+v", state)
	}
}

func TestSync_EventStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sync/events"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for f.hub.Subscribers() == 0 {
		select {
		case <-ctx.Done():
			t.Fatalf("subscriber never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}
	f.hub.Publish(service.SyncEvent{Type: service.EventDrawSynced, RunID: "r1", DrawNo: 42})

	var ev service.SyncEvent
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != service.EventDrawSynced || ev.DrawNo != 42 {
		t.Fatalf("event=%+v", ev)
	}
}
