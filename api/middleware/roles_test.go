package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
)

func TestRequireRole(t *testing.T) {
	guard := RequireRole(nil, enums.ActorRoleStaff, enums.ActorRoleAdmin)
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[enums.ActorRole]int{
		enums.ActorRoleStaff:    http.StatusNoContent,
		enums.ActorRoleAdmin:    http.StatusNoContent,
		enums.ActorRoleCustomer: http.StatusForbidden,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{Role: string(role)}))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("role %s: expected %d got %d", role, want, resp.Code)
		}
	}
}

func TestRequireCustomer(t *testing.T) {
	handler := RequireCustomer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	staff := httptest.NewRequest(http.MethodGet, "/", nil)
	staff = staff.WithContext(WithIdentity(staff.Context(), Identity{SubjectID: "s", Role: "staff"}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff token, got %d", resp.Code)
	}

	customer := httptest.NewRequest(http.MethodGet, "/", nil)
	customer = customer.WithContext(WithIdentity(customer.Context(), Identity{SubjectID: "c", CustomerID: "c", Role: "customer"}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, customer)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for customer token, got %d", resp.Code)
	}
}
