package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/JaimeStill/flipbook-lab/internal/flipbooks"
	"github.com/JaimeStill/flipbook-lab/pkg/openapi"
	"github.com/JaimeStill/flipbook-lab/pkg/routes"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := flipbooks.NewHandler(
		app.store,
		app.pipeline,
		app.validator,
		app.logger,
		app.metrics,
		app.config.Pagination,
		app.config.Storage.MaxUploadSizeBytes(),
	)

	api := routes.Group{
		Prefix:   "/api",
		Children: []routes.Group{handler.Routes()},
	}
	api.Mount(mux)

	spec := generateSpec(app.config.Share.Origin, flipbooks.Components(), api)
	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		app.logger.Error("failed to render api specification", "error", err)
	} else {
		mux.HandleFunc("GET /api/openapi.json", openapi.ServeSpec(specBytes))
	}

	return app.enableCORS(app.instrument(mux))
}

func (app *Application) enableCORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   app.config.CORS.Origins,
		AllowedMethods:   app.config.CORS.Methods,
		AllowedHeaders:   app.config.CORS.Headers,
		AllowCredentials: app.config.CORS.Credentials,
	}).Handler(next)
}

func (app *Application) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		status := strconv.Itoa(recorder.status)
		app.metrics.HTTPRequestTotal.
			WithLabelValues(r.Method, r.URL.Path, status).Inc()
		app.metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, r.URL.Path, status).
			Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status while preserving streaming
// flush behavior for server-sent events.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
