package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/http/handlers"
	"chargeassist/backend/services/assistant-service/internal/http/middleware"
)

// RouterDeps collects handler dependencies. RecentSearches and WSChat are
// optional; nil leaves the route unregistered.
type RouterDeps struct {
	Sessions       *handlers.SessionsHandler
	Chat           *handlers.ChatHandler
	Search         *handlers.SearchHandler
	RecentSearches http.HandlerFunc
	WSChat         http.HandlerFunc
	Health         http.HandlerFunc
	TokenValidator middleware.TokenValidator
	Logger         *zap.Logger
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	logged := func(handler http.Handler) http.Handler {
		return middleware.Chain(handler,
			middleware.RecoveryMiddleware(deps.Logger),
			middleware.LoggingMiddleware(deps.Logger),
		)
	}
	authenticated := func(handler http.Handler) http.Handler {
		return logged(middleware.Chain(handler, middleware.SessionAuth(deps.TokenValidator)))
	}
	sessionOptional := func(handler http.Handler) http.Handler {
		return logged(middleware.Chain(handler, middleware.OptionalSessionAuth(deps.TokenValidator)))
	}

	mux.Handle("/health", logged(method(http.MethodGet, deps.Health)))

	mux.Handle("/api/sessions", logged(method(http.MethodPost, http.HandlerFunc(deps.Sessions.Create))))
	mux.Handle("/api/sessions/me", authenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.Sessions.Me(w, r)
		case http.MethodDelete:
			deps.Sessions.End(w, r)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/api/chat", authenticated(method(http.MethodPost, http.HandlerFunc(deps.Chat.Handle))))
	mux.Handle("/api/stations/search", sessionOptional(method(http.MethodPost, http.HandlerFunc(deps.Search.Handle))))

	if deps.RecentSearches != nil {
		mux.Handle("/internal/searches/recent", logged(method(http.MethodGet, deps.RecentSearches)))
	}

	// The websocket route skips the logging wrapper; the upgrade needs the
	// raw response writer.
	if deps.WSChat != nil {
		mux.Handle("/ws/chat", middleware.Chain(method(http.MethodGet, deps.WSChat),
			middleware.RecoveryMiddleware(deps.Logger)))
	}

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
