package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/handler/dto"
	"github.com/mtlprog/stopwork/internal/middleware"
)

const testSecret = "test-secret"

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": actor.ID, "role": string(actor.Role)})
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret, "stopwork")
	token, err := auth.IssueToken(domain.Actor{ID: "sup-1", Name: "Sam", Role: domain.RoleSupervisor}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/stop-work", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	auth.Authenticate(echoActor()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "sup-1", got["id"])
	assert.Equal(t, "SUPERVISOR", got["role"])
}

func TestAuthenticate_QueryToken(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret, "stopwork")
	token, err := auth.IssueToken(domain.Actor{ID: "dispatch", Role: domain.RoleSystem}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/stop-work/feed?access_token="+token, nil)
	rec := httptest.NewRecorder()

	auth.Authenticate(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_Rejects(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret, "stopwork")
	other := middleware.NewAuthMiddleware("other-secret", "stopwork")
	foreignIssuer := middleware.NewAuthMiddleware(testSecret, "someone-else")

	actor := domain.Actor{ID: "op-1", Role: domain.RoleOperator}
	expired, err := auth.IssueToken(actor, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.IssueToken(actor, time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.IssueToken(actor, time.Hour)
	require.NoError(t, err)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "op-1",
		Issuer:    "stopwork",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noRoleToken, err := noRole.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage", header: "Bearer abc.def.ghi"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong key", header: "Bearer " + wrongKey},
		{name: "wrong issuer", header: "Bearer " + wrongIssuer},
		{name: "no role", header: "Bearer " + noRoleToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stop-work", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			auth.Authenticate(echoActor()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "INVALID_TOKEN", body.Error.Code)
		})
	}
}

func TestIssueToken_Validation(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret, "stopwork")

	_, err := auth.IssueToken(domain.Actor{Role: domain.RoleEHS}, time.Hour)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = auth.IssueToken(domain.Actor{ID: "x", Role: "JANITOR"}, time.Hour)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetActorFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := middleware.GetActorFromContext(req.Context())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestMetrics_PassesStatusThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stop-work/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	middleware.Metrics(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stop-work/abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	h := middleware.NewCORS([]string{"http://dashboard.local"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/stop-work", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/stop-work", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
