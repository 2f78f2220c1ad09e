package server

import (
	"net/http"

	"github.com/randalmurphal/tidynote/auth"
	tnctx "github.com/randalmurphal/tidynote/context"
)

// requireToken rejects requests without the configured bearer token.
// Health checks stay open.
func (s *Server) requireToken(next http.Handler) http.Handler {
	if s.cfg.TokenHash == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err == nil && !auth.MatchHash(token, s.cfg.TokenHash) {
			err = auth.ErrInvalidToken
		}
		if err != nil {
			tnctx.Logger(r.Context()).Info("request rejected", "reason", err.Error())
			w.Header().Set("WWW-Authenticate", `Bearer realm="tidynote"`)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
