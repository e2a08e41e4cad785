package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/retailpos-backend/api/middleware"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func customer(customerID, businessID uuid.UUID) middleware.Identity {
	return middleware.Identity{
		SubjectID:  customerID.String(),
		CustomerID: customerID.String(),
		BusinessID: businessID.String(),
		Role:       string(enums.ActorRoleCustomer),
	}
}

func staff(businessID uuid.UUID, branchID *uuid.UUID) middleware.Identity {
	id := middleware.Identity{
		SubjectID:  uuid.NewString(),
		BusinessID: businessID.String(),
		Role:       string(enums.ActorRoleStaff),
	}
	if branchID != nil {
		id.BranchID = branchID.String()
	}
	return id
}

// serve mounts h on pattern so chi path params resolve, seeds the identity and runs one request.
func serve(t *testing.T, id middleware.Identity, method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), id)))
		})
	})
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code
}
