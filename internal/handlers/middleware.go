package handlers

import (
	"net/http"
	"os"
)

type MiddlewareProvider struct {
	AllowedOrigin string
}

func New() *MiddlewareProvider {
	origin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if origin == "" {
		origin = "*"
	}
	return &MiddlewareProvider{
		AllowedOrigin: origin,
	}
}

// CORSMiddleware answers preflight requests and stamps the CORS headers
// on every response. The API is consumed from browser clients on other
// origins.
func (m *MiddlewareProvider) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", m.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
