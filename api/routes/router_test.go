package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/fulfillment"
	pkgAuth "github.com/angelmondragon/retailpos-backend/pkg/auth"
	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	data    map[string]string
	allow   bool
	windows []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, allow: true}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	f.windows = append(f.windows, scope)
	if f.allow {
		return true, 1, nil
	}
	return false, 6, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type stubFulfillment struct {
	businessID uuid.UUID
}

func (s *stubFulfillment) PendingOrders(_ context.Context, businessID uuid.UUID) ([]fulfillment.PendingOrder, error) {
	s.businessID = businessID
	return []fulfillment.PendingOrder{{CustomerID: uuid.New(), CustomerName: "Ana", ItemCount: 2, Total: decimal.RequireFromString("7.40")}}, nil
}

func (s *stubFulfillment) MarkCollected(context.Context, fulfillment.Staff, uuid.UUID) (*fulfillment.CollectResult, error) {
	return &fulfillment.CollectResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: "test", Port: "0"},
		JWT:       config.JWTConfig{Secret: "secret", Issuer: "retailpos", ExpirationMinutes: 30},
		RateLimit: config.RateLimitConfig{RedeemWindow: time.Minute, RedeemLimit: 5},
	}
}

func newTestRouter(cfg *config.Config, deps Dependencies) http.Handler {
	if deps.Gatherer == nil {
		reg := prometheus.NewRegistry()
		deps.Gatherer = reg
		deps.HTTPMetrics = metrics.NewHTTPMetrics(reg)
	}
	return NewRouter(cfg, nil, deps)
}

func customerToken(t *testing.T, cfg *config.Config) (string, uuid.UUID) {
	t.Helper()
	customerID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		SubjectID:  customerID,
		BusinessID: uuid.New(),
		CustomerID: &customerID,
		Role:       enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, customerID
}

func staffToken(t *testing.T, cfg *config.Config, businessID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		SubjectID:  uuid.New(),
		BusinessID: businessID,
		Role:       enums.ActorRoleStaff,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func do(router http.Handler, method, target, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{})
	rec := do(router, http.MethodGet, "/health/live", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-RetailPOS-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestHealthReadyPingsRedis(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{Redis: newFakeStore()})
	rec := do(router, http.MethodGet, "/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"redis":"ok"`) {
		t.Fatalf("expected redis check in body, got %s", rec.Body.String())
	}
}

func TestMetricsEndpointServesRequestCounters(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{})
	do(router, http.MethodGet, "/health/live", "", nil)

	rec := do(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/health/live") {
		t.Fatalf("expected health route in metrics output")
	}
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), Dependencies{})
	rec := do(router, http.MethodGet, "/api/v1/list", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCustomerRoutesRejectStaff(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, Dependencies{})
	rec := do(router, http.MethodGet, "/api/v1/cart", staffToken(t, cfg, uuid.New()), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestStaffRoutesRejectCustomers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, Dependencies{Fulfillment: &stubFulfillment{}})
	token, _ := customerToken(t, cfg)
	for _, target := range []string{"/api/v1/staff/click-and-collect", "/api/v1/admin/vouchers"} {
		rec := do(router, http.MethodGet, target, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 got %d", target, rec.Code)
		}
	}
}

func TestStaffSeesPendingPickups(t *testing.T) {
	cfg := testConfig()
	businessID := uuid.New()
	desk := &stubFulfillment{}
	router := newTestRouter(cfg, Dependencies{Fulfillment: desk})

	rec := do(router, http.MethodGet, "/api/v1/staff/click-and-collect", staffToken(t, cfg, businessID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if desk.businessID != businessID {
		t.Fatalf("expected business %s from token, got %s", businessID, desk.businessID)
	}
}

func TestMutatingRoutesRequireIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, Dependencies{Redis: newFakeStore()})
	token, _ := customerToken(t, cfg)

	rec := do(router, http.MethodPost, "/api/v1/cart/submit", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRedeemIsRateLimitedPerCustomer(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	store.allow = false
	router := newTestRouter(cfg, Dependencies{Redis: store})
	token, customerID := customerToken(t, cfg)

	rec := do(router, http.MethodPost, "/api/v1/vouchers/"+uuid.NewString()+"/redeem", token, map[string]string{"Idempotency-Key": "k-1"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
	if len(store.windows) != 1 || store.windows[0] != "redeem:"+customerID.String() {
		t.Fatalf("unexpected rate limit scopes %v", store.windows)
	}
}
