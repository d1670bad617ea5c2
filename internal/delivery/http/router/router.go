package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/linkcleaner-service/internal/delivery/http/handler"
	"github.com/user/linkcleaner-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)

	// Extraction pipeline.
	mux.HandleFunc("POST /api/extract", h.HandleExtract)
	mux.HandleFunc("GET /api/extract/last", h.HandleLastResult)

	// History view.
	mux.HandleFunc("GET /api/history", h.HandleHistory)
	mux.HandleFunc("POST /api/history/refresh", h.HandleRefreshHistory)
	mux.HandleFunc("GET /api/history/copied", h.HandleCopied)
	mux.HandleFunc("POST /api/history/{id}/copy", h.HandleCopy)
	mux.HandleFunc("POST /api/history/{id}/delete-request", h.HandleDeleteRequest)
	mux.HandleFunc("POST /api/history/delete-cancel", h.HandleDeleteCancel)
	mux.HandleFunc("POST /api/history/delete-confirm", h.HandleDeleteConfirm)

	// Manual record CRUD.
	mux.HandleFunc("POST /api/records", h.HandleCreateRecord)
	mux.HandleFunc("GET /api/records/{id}", h.HandleGetRecord)
	mux.HandleFunc("PATCH /api/records/{id}", h.HandleUpdateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", h.HandleDeleteRecord)

	// Failure audit.
	mux.HandleFunc("GET /api/failures", h.HandleFailures)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
