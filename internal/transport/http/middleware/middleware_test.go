package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novara/internal/model"
	"novara/internal/session"
)

type fakeResolver map[string]error

func (f fakeResolver) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if err, ok := f[token]; ok {
		if err != nil {
			return nil, err
		}
		return &model.Session{ID: "sid-" + token, UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return nil, model.ErrSessionNotFound
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := GetUserIDFromContext(r.Context()); ok && id == 7 {
		w.Header().Set("X-User", "yes")
	}
	w.WriteHeader(http.StatusOK)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", TokenFromRequest(r), "header wins over cookie")

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "cookie-token", TokenFromRequest(r))
}

func TestAuthMiddleware(t *testing.T) {
	resolver := fakeResolver{
		"good":    nil,
		"expired": model.ErrSessionExpired,
	}
	handler := AuthMiddleware(resolver)(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantUser   bool
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized},
		{name: "valid", token: "good", wantStatus: http.StatusOK, wantUser: true},
		{name: "expired", token: "expired", wantStatus: http.StatusUnauthorized},
		{name: "revoked", token: "unknown", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, rec.Header().Get("X-User") == "yes")
		})
	}
}

func TestAuthMiddleware_ExpiredCode(t *testing.T) {
	handler := AuthMiddleware(fakeResolver{"old": model.ErrSessionExpired})(http.HandlerFunc(echoUser))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer old")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), model.CodeTokenExpired)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	handler := OptionalAuthMiddleware(fakeResolver{"good": nil})(http.HandlerFunc(echoUser))

	for _, token := range []string{"", "bogus"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-User"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "good"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "yes", rec.Header().Get("X-User"))
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/api/books/1", "/api/books/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/books/{id}", "404"))
	assert.Equal(t, float64(2), count)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/books", nil))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/api/books"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"bytes":2`)
}

func TestRequestLogger_AttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Debug().Str("field", "price").Msg("request body rejected")
		w.WriteHeader(http.StatusBadRequest)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/books", nil))

	assert.Contains(t, buf.String(), `"message":"request body rejected"`)
	assert.Contains(t, buf.String(), `"component":"http"`)
}
