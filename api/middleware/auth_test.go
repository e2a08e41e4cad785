package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/auth"
	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT(), stubRevocations{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT(), stubRevocations{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsCustomerIdentity(t *testing.T) {
	cfg := testJWT()
	customerID := uuid.New()
	businessID := uuid.New()
	token := mintTestToken(t, cfg, auth.AccessTokenPayload{
		SubjectID:  customerID,
		BusinessID: businessID,
		CustomerID: &customerID,
		Role:       enums.ActorRoleCustomer,
	})

	var captured Identity
	handler := Auth(cfg, stubRevocations{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = Identity{
			SubjectID:  SubjectIDFromContext(r.Context()),
			CustomerID: CustomerIDFromContext(r.Context()),
			BusinessID: BusinessIDFromContext(r.Context()),
			BranchID:   BranchIDFromContext(r.Context()),
			Role:       RoleFromContext(r.Context()),
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.CustomerID != customerID.String() {
		t.Fatalf("expected customer %s got %s", customerID, captured.CustomerID)
	}
	if captured.BusinessID != businessID.String() {
		t.Fatalf("expected business %s got %s", businessID, captured.BusinessID)
	}
	if captured.Role != string(enums.ActorRoleCustomer) {
		t.Fatalf("expected role customer got %s", captured.Role)
	}
	if captured.BranchID != "" {
		t.Fatalf("expected no branch got %s", captured.BranchID)
	}
}

func TestAuthSeedsStaffBranch(t *testing.T) {
	cfg := testJWT()
	branchID := uuid.New()
	token := mintTestToken(t, cfg, auth.AccessTokenPayload{
		SubjectID:  uuid.New(),
		BusinessID: uuid.New(),
		BranchID:   &branchID,
		Role:       enums.ActorRoleStaff,
	})

	var branch, customer string
	handler := Auth(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		branch = BranchIDFromContext(r.Context())
		customer = CustomerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if branch != branchID.String() {
		t.Fatalf("expected branch %s got %s", branchID, branch)
	}
	if customer != "" {
		t.Fatalf("staff token should not carry a customer, got %s", customer)
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	cfg := testJWT()
	customerID := uuid.New()
	token := mintTestToken(t, cfg, auth.AccessTokenPayload{
		SubjectID:  customerID,
		BusinessID: uuid.New(),
		CustomerID: &customerID,
		Role:       enums.ActorRoleCustomer,
		JTI:        "revoked-jti",
	})

	handler := Auth(cfg, stubRevocations{revoked: map[string]bool{"revoked-jti": true}}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRevocationStoreDown(t *testing.T) {
	cfg := testJWT()
	customerID := uuid.New()
	token := mintTestToken(t, cfg, auth.AccessTokenPayload{
		SubjectID:  customerID,
		BusinessID: uuid.New(),
		CustomerID: &customerID,
		Role:       enums.ActorRoleCustomer,
	})

	handler := Auth(cfg, stubRevocations{err: errors.New("redis down")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, payload auth.AccessTokenPayload) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}
