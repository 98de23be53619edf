package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/heptiolabs/healthcheck"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/handlers"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, uniqueEmail bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db, uniqueEmail); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Provider() string { return "stub" }

func (s *stubNotifier) NotifyLead(context.Context, *domain.Lead) error {
	s.calls++
	return s.err
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:      "/api/v1",
		StrictValidation: true,
		RateRPS:          100,
		RateBurst:        100,
		IdempotencyTTL:   time.Hour,
		OTEL:             config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newEngine(t *testing.T, deps Deps, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, deps, cfg)
	return r
}

func do(r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func asJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return m
}

const leadJSON = `{"name":"Ada Lovelace","email":"ada@example.com","message":"We need help automating intake.","service":"automation"}`

func countLeads(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Lead{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestIngest_EndToEnd(t *testing.T) {
	db := newTestDB(t, false)
	n := &stubNotifier{}
	r := newEngine(t, Deps{DB: db, Notifier: n}, testConfig())

	for _, path := range []string{"/api/v1/leads", FunctionsPath} {
		w := do(r, http.MethodPost, path, leadJSON, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d body=%s", path, w.Code, w.Body.String())
		}
		body := asJSON(t, w)
		if body["success"] != true || body["emailSent"] != true || body["leadId"] == "" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("%s: missing ACAO *", path)
		}
		if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s: missing request id or security headers", path)
		}
	}
	if got := countLeads(t, db); got != 2 || n.calls != 2 {
		t.Fatalf("rows=%d notifications=%d", got, n.calls)
	}
}

func TestIngest_EmailFailureStillSucceeds(t *testing.T) {
	db := newTestDB(t, false)
	r := newEngine(t, Deps{DB: db, Notifier: &stubNotifier{err: errors.New("provider 500")}}, testConfig())

	w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, nil)
	body := asJSON(t, w)
	if w.Code != http.StatusOK || body["emailSent"] != false || body["success"] != true {
		t.Fatalf("unexpected: %d %v", w.Code, body)
	}
	if countLeads(t, db) != 1 {
		t.Fatalf("lead must be stored")
	}
}

func TestIngest_ErrorContract(t *testing.T) {
	db := newTestDB(t, true)
	r := newEngine(t, Deps{DB: db}, testConfig())

	w := do(r, http.MethodGet, "/api/v1/leads", "", nil)
	if w.Code != http.StatusMethodNotAllowed || asJSON(t, w)["error"] != "Method not allowed" {
		t.Fatalf("GET: %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/v1/leads", "{not json", nil)
	if w.Code != http.StatusBadRequest || asJSON(t, w)["error"] != handlers.MsgInvalidJSON {
		t.Fatalf("bad json: %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/v1/leads", `{"name":"Ada","email":"nope","message":"long enough message"}`, nil)
	if body := asJSON(t, w); w.Code != http.StatusBadRequest || body["error"] != domain.MsgInvalidEmail || body["field"] != "email" {
		t.Fatalf("validation: %d %v", w.Code, body)
	}

	w = do(r, http.MethodPost, "/api/v1/leads", `{"name":"Ada","email":"ada@example.com","message":"short"}`, nil)
	if w.Code != http.StatusBadRequest || asJSON(t, w)["error"] != domain.MsgShortMessage {
		t.Fatalf("strict rules: %d %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, nil); w.Code != http.StatusOK {
		t.Fatalf("first: %d", w.Code)
	}
	w = do(r, http.MethodPost, "/api/v1/leads", leadJSON, nil)
	if w.Code != http.StatusConflict || asJSON(t, w)["code"] != "conflict" {
		t.Fatalf("duplicate: %d %s", w.Code, w.Body.String())
	}

	big := `{"name":"Ada","email":"ada@example.com","message":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	if w := do(r, http.MethodPost, "/api/v1/leads", big, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("oversized body: %d", w.Code)
	}
}

func TestIngest_NoDatabase(t *testing.T) {
	r := newEngine(t, Deps{}, testConfig())
	w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, nil)
	body := asJSON(t, w)
	if w.Code != http.StatusInternalServerError || body["error"] != "Server configuration error" {
		t.Fatalf("unexpected: %d %v", w.Code, body)
	}
}

func TestIngest_NoDatabaseFailsBeforeDecoding(t *testing.T) {
	r := newEngine(t, Deps{}, testConfig())
	for _, path := range []string{"/api/v1/leads", FunctionsPath} {
		w := do(r, http.MethodPost, path, "{bad", nil)
		if body := asJSON(t, w); w.Code != http.StatusInternalServerError || body["code"] != handlers.ErrCodeServerConfig {
			t.Fatalf("%s: %d %v", path, w.Code, body)
		}
	}
}

func TestIngest_StrictRulesAcceptOneRuneName(t *testing.T) {
	db := newTestDB(t, false)
	r := newEngine(t, Deps{DB: db}, testConfig())

	w := do(r, http.MethodPost, "/api/v1/leads", `{"name":"李","email":"li@example.com","message":"long enough message"}`, nil)
	if w.Code != http.StatusOK || asJSON(t, w)["success"] != true {
		t.Fatalf("one-rune name: %d %s", w.Code, w.Body.String())
	}
	if countLeads(t, db) != 1 {
		t.Fatalf("lead must be stored")
	}
}

func TestIngest_BasicRulesWhenNotStrict(t *testing.T) {
	cfg := testConfig()
	cfg.StrictValidation = false
	r := newEngine(t, Deps{DB: newTestDB(t, false)}, cfg)

	w := do(r, http.MethodPost, "/api/v1/leads", `{"name":"A","email":"a@b.co","message":"hi"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("basic rules should accept short fields: %d %s", w.Code, w.Body.String())
	}
}

func TestIngest_IdempotentReplay(t *testing.T) {
	db := newTestDB(t, false)
	n := &stubNotifier{}
	r := newEngine(t, Deps{DB: db, Notifier: n}, testConfig())
	hdr := map[string]string{middleware.HeaderIdempotencyKey: uuid.NewString()}

	first := do(r, http.MethodPost, "/api/v1/leads", leadJSON, hdr)
	second := do(r, http.MethodPost, "/api/v1/leads", leadJSON, hdr)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("codes %d %d", first.Code, second.Code)
	}
	if asJSON(t, first)["leadId"] != asJSON(t, second)["leadId"] {
		t.Fatalf("replay must return the same lead")
	}
	if second.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay header missing")
	}
	if countLeads(t, db) != 1 || n.calls != 1 {
		t.Fatalf("replay must not store or notify again: rows=%d calls=%d", countLeads(t, db), n.calls)
	}

	hdr[middleware.HeaderIdempotencyKey] = "bad key!"
	if w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, hdr); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid key: %d", w.Code)
	}
}

func TestIngest_ReplaySharedAcrossLeadRoutes(t *testing.T) {
	db := newTestDB(t, false)
	cfg := testConfig()
	cfg.Auth.TableAPIKey = "anon"
	n := &stubNotifier{}
	r := newEngine(t, Deps{DB: db, Notifier: n}, cfg)
	key := uuid.NewString()

	w := do(r, http.MethodPost, TablePath, leadJSON, map[string]string{"apikey": "anon", middleware.HeaderIdempotencyKey: key})
	if w.Code != http.StatusCreated {
		t.Fatalf("table insert: %d %s", w.Code, w.Body.String())
	}
	var rows []domain.Lead
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil || len(rows) != 1 {
		t.Fatalf("rows: %s %v", w.Body.String(), err)
	}

	for _, path := range []string{"/api/v1/leads", FunctionsPath} {
		w = do(r, http.MethodPost, path, leadJSON, map[string]string{middleware.HeaderIdempotencyKey: key})
		if w.Code != http.StatusOK || w.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
		if body := asJSON(t, w); body["leadId"] != rows[0].ID || body["emailSent"] != false {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
	if countLeads(t, db) != 1 || n.calls != 0 {
		t.Fatalf("fallback with the same key must not store or notify again: rows=%d calls=%d", countLeads(t, db), n.calls)
	}
}

func Test_leadScope(t *testing.T) {
	for _, base := range []string{"/api/v1", "/api/v1/"} {
		scope := leadScope(base)
		for _, route := range []string{"/api/v1/leads", FunctionsPath, TablePath} {
			if got := scope(route); got != LeadReplayScope {
				t.Fatalf("base %q route %q -> %q", base, route, got)
			}
		}
		if got := scope("/api/v1/leads/:id/notify"); got != "" {
			t.Fatalf("notify route must keep its own scope, got %q", got)
		}
	}
	if got := leadScope("")("/leads"); got != LeadReplayScope {
		t.Fatalf("root base -> %q", got)
	}
}

func TestPreflight(t *testing.T) {
	r := newEngine(t, Deps{DB: newTestDB(t, false)}, testConfig())

	w := do(r, http.MethodOptions, "/api/v1/leads", "", map[string]string{
		"Origin":                         "https://lambagentic.com",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "authorization, x-client-info, apikey, content-type, idempotency-key",
	})
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("preflight: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("ACAO = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type", "idempotency-key"} {
		if !strings.Contains(allowed, h) {
			t.Fatalf("allow-headers %q missing %s", allowed, h)
		}
	}
	if m := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(m, "POST") || !strings.Contains(m, "OPTIONS") {
		t.Fatalf("allow-methods = %q", m)
	}

	w = do(r, http.MethodOptions, FunctionsPath, "", nil)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("bare OPTIONS: %d %q", w.Code, w.Body.String())
	}
}

func TestCORS_Allowlist(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://lambagentic.com"}
	r := newEngine(t, Deps{DB: newTestDB(t, false)}, cfg)

	w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, map[string]string{"Origin": "https://lambagentic.com"})
	if w.Header().Get("Access-Control-Allow-Origin") != "https://lambagentic.com" {
		t.Fatalf("allowed origin not echoed: %v", w.Header())
	}
	w = do(r, http.MethodPost, "/api/v1/leads", leadJSON, map[string]string{"Origin": "https://evil.example"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin: %d", w.Code)
	}
}

func TestTableAPI(t *testing.T) {
	db := newTestDB(t, true)
	cfg := testConfig()
	cfg.Auth.TableAPIKey = "anon"
	n := &stubNotifier{}
	r := newEngine(t, Deps{DB: db, Notifier: n}, cfg)

	if w := do(r, http.MethodPost, TablePath, leadJSON, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing apikey: %d", w.Code)
	}

	hdr := map[string]string{"apikey": "anon", "Prefer": "return=representation"}
	w := do(r, http.MethodPost, TablePath, `{"name":"Ada","email":"ada@example.com","message":"hi"}`, hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("insert: %d %s", w.Code, w.Body.String())
	}
	var rows []domain.Lead
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil || len(rows) != 1 || rows[0].ID == "" {
		t.Fatalf("rows: %s %v", w.Body.String(), err)
	}
	if n.calls != 0 {
		t.Fatalf("table insert must not notify")
	}

	w = do(r, http.MethodPost, TablePath, leadJSON, hdr)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", w.Code)
	}
	var te handlers.TableError
	_ = json.Unmarshal(w.Body.Bytes(), &te)
	if te.Code != handlers.TableCodeUniqueViolation {
		t.Fatalf("table error code = %q", te.Code)
	}

	w = do(r, http.MethodPost, "/api/v1/leads/"+rows[0].ID+"/notify", "", nil)
	if w.Code != http.StatusOK || asJSON(t, w)["emailSent"] != true || n.calls != 1 {
		t.Fatalf("notify: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/api/v1/leads/"+uuid.NewString()+"/notify", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("notify unknown: %d", w.Code)
	}
}

func TestBearerAuthAndRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.BearerToken = "site-key"
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r := newEngine(t, Deps{DB: newTestDB(t, false)}, cfg)

	if w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no bearer: %d", w.Code)
	}
	auth := map[string]string{"Authorization": "Bearer site-key"}
	if w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, auth); w.Code != http.StatusOK {
		t.Fatalf("authorized: %d %s", w.Code, w.Body.String())
	}
	w := do(r, http.MethodPost, "/api/v1/leads", leadJSON, auth)
	if w.Code != http.StatusTooManyRequests || asJSON(t, w)["code"] != "rate_limited" {
		t.Fatalf("expected rate limit: %d %s", w.Code, w.Body.String())
	}
}

func TestOperationalEndpoints(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r := newEngine(t, Deps{DB: newTestDB(t, false)}, cfg)

	for _, p := range []string{"/health", "/live", "/ready", "/metrics"} {
		if w := do(r, http.MethodGet, p, "", nil); w.Code != http.StatusOK {
			t.Fatalf("GET %s: %d", p, w.Code)
		}
	}
	w := do(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || asJSON(t, w)["code"] != handlers.ErrCodeNotFound {
		t.Fatalf("404: %d %s", w.Code, w.Body.String())
	}
}

func TestReadiness_ExtraCheckFails(t *testing.T) {
	r := newEngine(t, Deps{
		DB:          newTestDB(t, false),
		ReadyChecks: map[string]healthcheck.Check{"redis": func() error { return errors.New("down") }},
	}, testConfig())

	if w := do(r, http.MethodGet, "/ready", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with failing check: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/live", "", nil); w.Code != http.StatusOK {
		t.Fatalf("live must ignore readiness checks: %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	for _, p := range []string{"", "/"} {
		if g := groupWithPrefix(r, p); g.BasePath() != "/" {
			t.Fatalf("prefix %q -> %q", p, g.BasePath())
		}
	}
	if g := groupWithPrefix(r, "/api/v2"); g.BasePath() != "/api/v2" {
		t.Fatalf("got %q", g.BasePath())
	}
}
