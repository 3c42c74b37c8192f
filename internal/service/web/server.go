package web

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/types"
)

// basicAuthMiddleware enforces HTTP Basic Authentication when both a user
// and a password are configured, and is a no-op otherwise.
func basicAuthMiddleware(next http.Handler, user, pass string) http.Handler {
	if user == "" || pass == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized.\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewMux wires the panel routes onto a fresh ServeMux. Split out of
// StartServer so tests can drive the exact production routing.
func NewMux(cfg *types.Config, handler *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	webUser := cfg.WebConf.User
	webPassword := cfg.WebConf.Password

	mux.Handle("/api/scrape", basicAuthMiddleware(http.HandlerFunc(handler.HandleScrape), webUser, webPassword))
	mux.Handle("/api/status", basicAuthMiddleware(http.HandlerFunc(handler.HandleStatus), webUser, webPassword))
	mux.Handle("/api/cache/clear", basicAuthMiddleware(http.HandlerFunc(handler.HandleCacheClear), webUser, webPassword))
	mux.Handle("/api/cache/status", basicAuthMiddleware(http.HandlerFunc(handler.HandleCacheStatus), webUser, webPassword))
	mux.Handle("/api/download", basicAuthMiddleware(http.HandlerFunc(handler.HandleDownload), webUser, webPassword))
	mux.Handle("/api/proxies", basicAuthMiddleware(http.HandlerFunc(handler.HandleProxies), webUser, webPassword))

	// WebSocket endpoint stays unauthenticated; browsers cannot attach
	// basic-auth headers to websocket upgrades.
	mux.HandleFunc("/ws/scrape", handler.HandleScrapeStream)

	return mux
}

// StartServer brings up the panel HTTP listener. A port of zero disables the
// web UI entirely.
func StartServer(wg *sync.WaitGroup, cfg *types.Config) {
	if cfg.WebConf.Port <= 0 {
		logger.Info().Msgf("Web panel is disabled (port is 0 or not set).")
		return
	}

	handler := NewHandler(cfg)
	mux := NewMux(cfg, handler)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.WebConf.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error().Err(err).Msgf("FAILED to start web panel on %s", addr)
		return
	}

	logger.Info().Msgf("Web panel is listening on http://%s", addr)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := http.Serve(listener, mux); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msgf("Web server error")
		}
		logger.Info().Msgf("Web server stopped.")
	}()
}
