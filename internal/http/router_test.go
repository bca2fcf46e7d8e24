package http

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	dbpkg "github.com/yungbote/tenantdesk-backend/internal/data/db"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/items"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/testutil"
	"github.com/yungbote/tenantdesk-backend/internal/features/auditlog"
	itemsfeature "github.com/yungbote/tenantdesk-backend/internal/features/items"
	httpH "github.com/yungbote/tenantdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tenantdesk-backend/internal/http/middleware"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/mediator/behaviors"
	"github.com/yungbote/tenantdesk-backend/internal/observability"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code          string              `json:"code"`
		Message       string              `json:"message"`
		Details       map[string][]string `json:"details"`
		CorrelationID string              `json:"correlation_id"`
	} `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	tokens *identity.Tokens
	tenant string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	reg := mediator.NewRegistry()
	if err := itemsfeature.Register(reg, itemsfeature.Deps{Items: items.NewItemRepo(db, log), Tx: dbpkg.NewTxRunner(db), Log: log}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	auditStore := audit.NewStore(db, log)
	if err := auditlog.Register(reg, auditStore); err != nil {
		t.Fatalf("Register audit log: %v", err)
	}
	m := mediator.New(reg,
		mediator.WithLogger(log),
		mediator.WithIdentity(identity.Resolver),
		mediator.WithOuter(behaviors.NewAudit(auditStore, log)),
	)

	ps, err := identity.LoadPolicies(strings.NewReader("policies:\n  audit.read:\n    any_role: [Admin]\n"))
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	tokens, err := identity.NewTokens("s3cret", time.Hour, identity.WithTokenPolicies(ps))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	promReg := prometheus.NewRegistry()
	httpMetrics, err := observability.NewHTTPMetrics(promReg)
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	engine := NewRouter(RouterConfig{
		Log:                log,
		IdentityMiddleware: httpMW.NewIdentityMiddleware(log, tokens),
		HTTPMetrics:        httpMetrics,
		RequestTimeout:     5 * time.Second,
		HealthHandler:      httpH.NewHealthHandler(nil),
		ItemHandler:        httpH.NewItemHandler(m),
		AuditHandler:       httpH.NewAuditHandler(m),
		MetricsHandler:     promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
		TokenHandler:       httpH.NewTokenHandler(log, tokens),
	})
	return &testServer{engine: engine, tokens: tokens, tenant: "t-" + uuid.NewString()}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec.Code, env
}

func (s *testServer) token(t *testing.T, roles ...string) string {
	t.Helper()
	signed, _, err := s.tokens.Issue(identity.NewPrincipal("user-1", identity.InTenants(s.tenant), identity.WithRoles(roles...)))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return signed
}

func TestItemRoutes(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "Manager")

	status, env := s.do(t, nethttp.MethodPost, "/api/tenants/"+s.tenant+"/items", manager,
		map[string]string{"name": "Widget", "sku": "WID-1"})
	if status != nethttp.StatusOK || env.Error != nil {
		t.Fatalf("POST items: status=%d error=%+v", status, env.Error)
	}
	var created itemsfeature.ItemView
	if err := json.Unmarshal(env.Data, &created); err != nil || created.SKU != "WID-1" {
		t.Fatalf("POST items: data=%s err=%v", env.Data, err)
	}

	status, env = s.do(t, nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items/"+created.ID.String(), manager, nil)
	if status != nethttp.StatusOK {
		t.Fatalf("GET item: status=%d error=%+v", status, env.Error)
	}

	status, env = s.do(t, nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items?limit=10", manager, nil)
	var listed []itemsfeature.ItemView
	if status != nethttp.StatusOK || json.Unmarshal(env.Data, &listed) != nil || len(listed) != 1 {
		t.Fatalf("GET items: status=%d data=%s", status, env.Data)
	}
}

func TestAuditRoute(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "Manager")
	admin := s.token(t, "Admin")
	base := "/api/tenants/" + s.tenant

	s.do(t, nethttp.MethodPost, base+"/items", manager, map[string]string{"name": "Widget", "sku": "WID-1"})
	s.do(t, nethttp.MethodPost, base+"/items", manager, map[string]string{"name": "", "sku": "bad"})

	status, env := s.do(t, nethttp.MethodGet, base+"/audit", manager, nil)
	if status != nethttp.StatusForbidden {
		t.Fatalf("GET audit as manager: status=%d", status)
	}

	status, env = s.do(t, nethttp.MethodGet, base+"/audit?code=validation_error", admin, nil)
	var entries []auditlog.EntryView
	if status != nethttp.StatusOK || json.Unmarshal(env.Data, &entries) != nil {
		t.Fatalf("GET audit: status=%d data=%s", status, env.Data)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].RequestType, "CreateItem") || entries[0].UserID != "user-1" {
		t.Fatalf("GET audit: unexpected entries %+v", entries)
	}

	status, env = s.do(t, nethttp.MethodGet, base+"/audit?limit=abc", admin, nil)
	if status != nethttp.StatusBadRequest || env.Error == nil || len(env.Error.Details["limit"]) != 1 {
		t.Fatalf("GET audit bad limit: status=%d error=%+v", status, env.Error)
	}
}

func TestItemRoutesFailures(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, "Manager")
	clerk := s.token(t, "Clerk")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"anonymous", nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items", "", nil, nethttp.StatusUnauthorized, "unauthorized"},
		{"bad token is anonymous", nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items", "not-a-jwt", nil, nethttp.StatusUnauthorized, "unauthorized"},
		{"wrong role", nethttp.MethodPost, "/api/tenants/"+s.tenant+"/items", clerk, map[string]string{"name": "A", "sku": "A"}, nethttp.StatusForbidden, "forbidden"},
		{"foreign tenant", nethttp.MethodGet, "/api/tenants/other-"+s.tenant+"/items", manager, nil, nethttp.StatusForbidden, "forbidden"},
		{"invalid body", nethttp.MethodPost, "/api/tenants/"+s.tenant+"/items", manager, map[string]string{"sku": "lower"}, nethttp.StatusBadRequest, "validation_error"},
		{"bad item id", nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items/nope", manager, nil, nethttp.StatusBadRequest, "validation_error"},
		{"bad limit", nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items?limit=ten", manager, nil, nethttp.StatusBadRequest, "validation_error"},
		{"missing item", nethttp.MethodGet, "/api/tenants/"+s.tenant+"/items/7f9c0a6e-2a57-4b59-9b0e-3d0f9b1c2d3e", manager, nil, nethttp.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		status, env := s.do(t, tc.method, tc.path, tc.token, tc.body)
		if status != tc.status || env.Error == nil || env.Error.Code != tc.code {
			t.Fatalf("%s: status=%d error=%+v", tc.name, status, env.Error)
		}
	}
}

func TestAnonymousParseFailuresRevealNoFields(t *testing.T) {
	s := newTestServer(t)
	paths := []struct{ method, path string }{
		{nethttp.MethodPost, "/api/tenants/" + s.tenant + "/items"},
		{nethttp.MethodGet, "/api/tenants/" + s.tenant + "/items/nope"},
		{nethttp.MethodGet, "/api/tenants/" + s.tenant + "/items?limit=ten"},
		{nethttp.MethodGet, "/api/tenants/" + s.tenant + "/audit?limit=ten"},
	}
	for _, p := range paths {
		status, env := s.do(t, p.method, p.path, "", nil)
		if status != nethttp.StatusUnauthorized || env.Error == nil || env.Error.Code != "unauthorized" {
			t.Fatalf("%s %s: status=%d error=%+v", p.method, p.path, status, env.Error)
		}
		if env.Error.Details != nil {
			t.Fatalf("%s %s: details leaked to anonymous caller: %v", p.method, p.path, env.Error.Details)
		}
	}
}

func TestValidationDetailsOnTheWire(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, nethttp.MethodPost, "/api/tenants/"+s.tenant+"/items", s.token(t, "Manager"),
		map[string]string{"sku": "OK-1"})
	if status != nethttp.StatusBadRequest || env.Error == nil {
		t.Fatalf("POST items: status=%d", status)
	}
	if msgs := env.Error.Details["name"]; len(msgs) != 1 || msgs[0] != "Name is required" {
		t.Fatalf("POST items: details=%v", env.Error.Details)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil))
	if rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: status=%d", rec.Code)
	}
}

func TestDevToken(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, nethttp.MethodPost, "/api/dev/token", "", map[string]any{
		"user_id": "dev-1", "tenants": []string{s.tenant}, "roles": []string{"Manager"},
	})
	if status != nethttp.StatusOK {
		t.Fatalf("dev token: status=%d error=%+v", status, env.Error)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("dev token: %v", err)
	}
	p, err := s.tokens.Parse(out.AccessToken)
	if err != nil || p.Subject() != "dev-1" {
		t.Fatalf("dev token: parse err=%v", err)
	}

	status, env = s.do(t, nethttp.MethodPost, "/api/dev/token", "", map[string]any{})
	if status != nethttp.StatusBadRequest || env.Error == nil || len(env.Error.Details["user_id"]) != 1 {
		t.Fatalf("dev token without user: status=%d error=%+v", status, env.Error)
	}
}
