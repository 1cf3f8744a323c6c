// internal/membership/handler_test.go
package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"biblioteka/internal/storage/memory"
)

func newTestRouter(t *testing.T, limiter *rate.Limiter) (*chi.Mux, Service) {
	t.Helper()
	service := NewService(memory.NewStore(), limiter, zap.NewNop())
	handler := NewHandler(service)

	r := chi.NewRouter()
	r.Post("/api/members", handler.HandleRegister)
	r.Get("/api/members", handler.HandleListMembers)
	r.Get("/api/members/{id}", handler.HandleGetMember)
	return r, service
}

func register(router http.Handler, name, email string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{"name": name, "email": email})
	req := httptest.NewRequest(http.MethodPost, "/api/members", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRegister(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := register(router, "Jan Kowalski", "Jan@Example.com")
	require.Equal(t, http.StatusCreated, rec.Code)

	var member Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &member))
	assert.Equal(t, "Jan Kowalski", member.Name)
	assert.Equal(t, "jan@example.com", member.Email, "emails are normalized to lower case")
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	require.Equal(t, http.StatusCreated, register(router, "Jan", "jan@example.com").Code)

	rec := register(router, "Janina", "jan@example.com")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusBadRequest, register(router, "", "jan@example.com").Code)
	assert.Equal(t, http.StatusBadRequest, register(router, "Jan", "not-an-email").Code)
}

func TestHandleRegisterRateLimited(t *testing.T) {
	router, _ := newTestRouter(t, rate.NewLimiter(rate.Limit(0), 1))

	require.Equal(t, http.StatusCreated, register(router, "Jan", "jan1@example.com").Code)
	assert.Equal(t, http.StatusTooManyRequests, register(router, "Jan", "jan2@example.com").Code)
}

func TestHandleGetMember(t *testing.T) {
	router, service := newTestRouter(t, nil)

	member, err := service.RegisterMember(context.Background(), "Jan", "jan@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/members/"+member.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/members/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListMembers(t *testing.T) {
	router, service := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	_, err := service.RegisterMember(context.Background(), "Jan", "jan@example.com")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var members []Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Len(t, members, 1)
}
