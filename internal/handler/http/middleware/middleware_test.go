package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authChain(svc *jwt.JWTService, next http.Handler) http.Handler {
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(svc.JWTAuth())(RequireCompany(next)))
}

func TestRequireCompany_BuildsActorFromClaims(t *testing.T) {
	svc, err := jwt.NewJWTService("test-secret", "1h")
	require.NoError(t, err)
	token, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u1", EmployeeID: "e1", CompanyID: "c1", Role: user.RoleManager})
	require.NoError(t, err)

	var got user.Actor
	handler := authChain(svc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, user.Actor{UserID: "u1", EmployeeID: "e1", CompanyID: "c1", Role: user.RoleManager}, got)
}

func TestRequireCompany_AdminWithoutEmployee(t *testing.T) {
	svc, err := jwt.NewJWTService("test-secret", "1h")
	require.NoError(t, err)
	token, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u1", CompanyID: "c1", Role: user.RoleAdmin})
	require.NoError(t, err)

	var got user.Actor
	handler := authChain(svc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, got.EmployeeID)
	assert.True(t, got.IsAdmin())
}

func TestAuthRequired_RejectsSSEToken(t *testing.T) {
	svc, err := jwt.NewJWTService("test-secret", "1h")
	require.NoError(t, err)
	token, _, err := svc.GenerateSSEToken("u1")
	require.NoError(t, err)

	handler := authChain(svc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name string
		role user.Role
		want int
	}{
		{"employee cannot approve", user.RoleEmployee, http.StatusForbidden},
		{"manager can approve", user.RoleManager, http.StatusOK},
		{"admin can approve", user.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequirePermission(user.PermissionCheckinApprove)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(WithActor(req.Context(), user.Actor{UserID: "u1", CompanyID: "c1", Role: tt.role}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireEmployee_RejectsActorWithoutEmployee(t *testing.T) {
	handler := RequireEmployee(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), user.Actor{UserID: "u1", CompanyID: "c1", Role: user.RoleAdmin}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeReceiver struct {
	erpsync.Receiver
	key, secret string
}

func (f *fakeReceiver) Authenticate(_ context.Context, key, secret string) (erpsync.Peer, error) {
	f.key, f.secret = key, secret
	if secret != "s3cret" {
		return erpsync.Peer{}, erpsync.ErrInvalidAPIKey
	}
	return erpsync.Peer{ID: "p1", Name: "branch-a", Enabled: true}, nil
}

func TestSyncKeyRequired(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "token k1:s3cret", http.StatusOK},
		{"wrong secret", "token k1:nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"bearer scheme", "Bearer k1:s3cret", http.StatusUnauthorized},
		{"missing secret", "token k1", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receiver := &fakeReceiver{}
			var peer erpsync.Peer
			handler := SyncKeyRequired(receiver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				peer, _ = PeerFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "branch-a", peer.Name)
				assert.Equal(t, "k1", receiver.key)
			}
		})
	}
}
