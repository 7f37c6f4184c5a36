package middleware

import (
	"mime"
	"net/http"
	"net/url"
)

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// sameHost reports whether header is an absolute URL whose host equals host
func sameHost(header, host string) bool {
	u, err := url.Parse(header)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == host
}

// SameOrigin rejects state-changing requests whose Origin or Referer names another host.
// Requests carrying neither header are let through.
func SameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isStateChanging(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		referer := r.Header.Get("Referer")
		if origin == "" && referer == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sameHost(origin, r.Host) || sameHost(referer, r.Host) {
			next.ServeHTTP(w, r)
			return
		}

		writeError(w, http.StatusForbidden, "Cross-origin request blocked")
	})
}

// RequireJSONOrMultipart rejects bodies on POST, PUT and PATCH that are neither JSON nor multipart
func RequireJSONOrMultipart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || (mediaType != "application/json" && mediaType != "multipart/form-data") {
			writeError(w, http.StatusBadRequest, "Content-Type must be application/json or multipart/form-data")
			return
		}
		next.ServeHTTP(w, r)
	})
}
