package web

import (
	"net/http"

	"github.com/PauloHFS/embedsim/internal/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler monta o mux com as rotas da API e a cadeia de middlewares.
func NewHandler(deps HandlerDeps, limiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+Metrics, promhttp.Handler())
	RegisterRoutes(mux, deps)

	var handler http.Handler = mux
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}

	handler = middleware.Recovery(
		middleware.Logger(
			middleware.SecurityHeaders(deps.Config.IsProd())(
				handler,
			),
		),
	)

	return gzhttp.GzipHandler(handler)
}
