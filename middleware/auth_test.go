package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gitea.com/go-chi/session"
	"github.com/blogem/audio-library/userctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionRouter serves /login, which signs in account 7, and /private behind guard
func sessionRouter(t *testing.T, guard func(http.Handler) http.Handler) http.Handler {
	t.Helper()

	sessioner, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "test_session",
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)
		sess.Set(SessionAccountID, int64(7))
		sess.Set(SessionUsername, "alice")
	})
	mux.Handle("/private", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := userctx.GetAccountID(r.Context())
		assert.Equal(t, int64(7), id)
		assert.Equal(t, "alice", userctx.GetUsername(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})))
	return sessioner(mux)
}

func TestRequireAuth(t *testing.T) {
	router := sessionRouter(t, RequireAuth)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequirePageAuth_Redirects(t *testing.T) {
	router := sessionRouter(t, RequirePageAuth)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
