// Package middleware provides HTTP middleware for the chatbot server.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// BasicAuth guards admin endpoints with HTTP basic auth. Credentials are
// compared in constant time over their digests so mismatched lengths do not
// leak timing.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	wantUser := sha256.Sum256([]byte(username))
	wantPass := sha256.Sum256([]byte(password))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if ok {
				gotUser := sha256.Sum256([]byte(user))
				gotPass := sha256.Sum256([]byte(pass))
				userMatch := subtle.ConstantTimeCompare(wantUser[:], gotUser[:]) == 1
				passMatch := subtle.ConstantTimeCompare(wantPass[:], gotPass[:]) == 1
				if userMatch && passMatch {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}
