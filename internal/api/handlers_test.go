package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/api"
	"github.com/phrazzld/microlesson-api/internal/api/shared"
	"github.com/stretchr/testify/require"
)

// newTestRouter mounts the handlers the way the server does, with a fake
// authenticator that trusts the X-Test-User header.
func newTestRouter(auth *api.AuthHandler, lessons *api.LessonHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		if auth != nil {
			r.Post("/auth/register", auth.Register)
			r.Post("/auth/login", auth.Login)
		}
		if lessons != nil {
			r.Group(func(r chi.Router) {
				r.Use(fakeAuth)
				r.Post("/lessons", lessons.Create)
				r.Get("/lessons", lessons.List)
				r.Get("/lessons/{id}", lessons.Get)
			})
		}
	})
	return r
}

func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := uuid.Parse(r.Header.Get("X-Test-User")); err == nil {
			r = r.WithContext(shared.SetUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
