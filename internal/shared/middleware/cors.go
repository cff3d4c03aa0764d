package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CORS applies Cross-Origin Resource Sharing headers.
//
// With no allowed origins every origin is accepted with a wildcard and no
// credentials. Otherwise the request Origin must match one of the allowed
// origins; it is echoed back and credentials are allowed so the session
// cookie travels with cross-origin dashboard calls. An allowed entry without
// a scheme ("localhost:3000") matches that host over http and https.
// Requests without an Origin header pass through untouched.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case len(allowed) == 0:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin == "":
			case isOriginAllowed(origin, allowed):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			default:
				http.Error(w, "Origin not allowed", http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// normalizeOrigin lowercases an origin and strips any path. Entries without
// a scheme are returned as a bare host.
func normalizeOrigin(origin string) string {
	origin = strings.ToLower(strings.TrimSpace(origin))
	if origin == "" {
		return ""
	}
	if !strings.Contains(origin, "://") {
		return strings.TrimRight(origin, "/")
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isOriginAllowed(origin string, allowed []string) bool {
	normalized := normalizeOrigin(origin)
	if !strings.Contains(normalized, "://") {
		return false
	}
	host := normalized[strings.Index(normalized, "://")+3:]

	for _, a := range allowed {
		if a == normalized || a == host {
			return true
		}
	}
	return false
}
