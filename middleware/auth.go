package middleware

import (
	"encoding/json"
	"net/http"

	"gitea.com/go-chi/session"
	"github.com/blogem/audio-library/userctx"
)

// Session keys
const (
	SessionAccountID = "account_id"
	SessionUsername  = "username"
)

// SessionAccountIDFrom returns the account ID stored in the request's session
func SessionAccountIDFrom(r *http.Request) (int64, bool) {
	sess := session.GetSession(r)
	if sess == nil {
		return 0, false
	}
	id, ok := sess.Get(SessionAccountID).(int64)
	return id, ok && id > 0
}

// withAccount copies the session identity into the request context
func withAccount(r *http.Request, accountID int64) *http.Request {
	ctx := userctx.SetAccountID(r.Context(), accountID)
	if username, ok := session.GetSession(r).Get(SessionUsername).(string); ok {
		ctx = userctx.SetUsername(ctx, username)
	}
	return r.WithContext(ctx)
}

// RequireAuth rejects API requests without a signed-in session with 401
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := SessionAccountIDFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, withAccount(r, accountID))
	})
}

// RequirePageAuth redirects page requests without a signed-in session to the home page
func RequirePageAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := SessionAccountIDFrom(r)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, withAccount(r, accountID))
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
