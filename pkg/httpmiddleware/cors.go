package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig lists what the presentation layer may send when it is served
// from another origin than the local API.
type CORSConfig struct {
	// Empty or "*" allows every origin.
	AllowOrigins []string
	// Defaults to the methods the local API routes use.
	AllowMethods []string
	// Empty echoes Access-Control-Request-Headers.
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	// Preflight cache lifetime in seconds. Zero omits the header.
	MaxAge int
}

var defaultMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// CORS answers preflight requests and sets the allow headers on actual
// requests. Origins match case-insensitively and are echoed as configured.
// With credentials a wildcard is never sent.
func CORS(cfg CORSConfig) Middleware {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]string, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[strings.ToLower(o)] = o
	}
	// Credentials with a wildcard echo the request origin instead.
	echoAny := allowAll && cfg.AllowCredentials

	methods := cfg.AllowMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	match := func(origin string) string {
		switch {
		case echoAny:
			return origin
		case allowAll:
			return "*"
		default:
			return allowed[strings.ToLower(origin)]
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")
			if !allowAll || echoAny {
				h.Add("Vary", "Origin")
			}
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			allowOrigin := match(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if allowOrigin != "" {
					h.Set("Access-Control-Allow-Origin", allowOrigin)
					h.Set("Access-Control-Allow-Methods", allowMethods)
					if allowHeaders != "" {
						h.Set("Access-Control-Allow-Headers", allowHeaders)
					} else if rh := r.Header.Get("Access-Control-Request-Headers"); rh != "" {
						h.Set("Access-Control-Allow-Headers", rh)
					}
					if cfg.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if maxAge != "" {
						h.Set("Access-Control-Max-Age", maxAge)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", allowOrigin)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposeHeaders != "" {
					h.Set("Access-Control-Expose-Headers", exposeHeaders)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
