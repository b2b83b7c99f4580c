package flipbooks

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/ingest"
	"github.com/JaimeStill/flipbook-lab/internal/metrics"
	"github.com/JaimeStill/flipbook-lab/pkg/handlers"
	"github.com/JaimeStill/flipbook-lab/pkg/pagination"
	"github.com/JaimeStill/flipbook-lab/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP endpoints for flipbook operations.
type Handler struct {
	sys           System
	pipeline      *ingest.Pipeline
	validator     *ingest.Validator
	logger        *slog.Logger
	metrics       *metrics.Metrics
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a flipbook handler with the specified configuration.
func NewHandler(
	sys System,
	pipeline *ingest.Pipeline,
	validator *ingest.Validator,
	logger *slog.Logger,
	m *metrics.Metrics,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		pipeline:      pipeline,
		validator:     validator,
		logger:        logger.With("handler", "flipbooks"),
		metrics:       m,
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the flipbook endpoint route groups. Share resolution lives
// under its own prefix so the share pattern never overlaps the wildcard
// document patterns.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/flipbooks",
				Tags:   []string{"flipbooks"},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.Upload, OpenAPI: Spec.Upload},
					{Method: "POST", Pattern: "/stream", Handler: h.UploadStream, OpenAPI: Spec.UploadStream},
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
					{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: Spec.Update},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
					{Method: "GET", Pattern: "/{id}/search", Handler: h.Search, OpenAPI: Spec.Search},
					{Method: "POST", Pattern: "/{id}/shares", Handler: h.CreateShare, OpenAPI: Spec.CreateShare},
					{Method: "GET", Pattern: "/{id}/export", Handler: h.Export, OpenAPI: Spec.Export},
					{Method: "POST", Pattern: "/{id}/views", Handler: h.TrackView, OpenAPI: Spec.TrackView},
					{Method: "GET", Pattern: "/{id}/pages/{page}", Handler: h.PageAsset, OpenAPI: Spec.PageAsset},
				},
			},
			{
				Prefix: "/shares",
				Tags:   []string{"shares"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{shareId}", Handler: h.FindShare, OpenAPI: Spec.FindShare},
				},
			},
		},
	}
}

// upload bundles the parsed multipart request.
type upload struct {
	file *ingest.SourceFile
	cmd  CreateCommand
	opts ingest.Options
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	up, err := h.parseUpload(r)
	if err != nil {
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(err), err)
		return
	}

	start := time.Now()
	run := h.pipeline.Ingest(r.Context(), up.file, up.opts)
	processed, err := run.Result()
	if err != nil {
		h.observeIngest("error", start)
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(err), err)
		return
	}
	h.observeIngest("complete", start)

	up.cmd.Processed = *processed
	doc, err := h.sys.Create(r.Context(), up.cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) UploadStream(w http.ResponseWriter, r *http.Request) {
	up, err := h.parseUpload(r)
	if err != nil {
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	start := time.Now()
	run := h.pipeline.Ingest(r.Context(), up.file, up.opts)

	for event := range run.Events() {
		h.writeEvent(w, "progress", event)
	}

	processed, err := run.Result()
	if err != nil {
		// the failure was already delivered as an error progress event
		h.observeIngest("error", start)
		h.logger.Error("streamed ingest failed", "error", err)
		return
	}
	h.observeIngest("complete", start)

	up.cmd.Processed = *processed
	doc, err := h.sys.Create(r.Context(), up.cmd)
	if err != nil {
		h.logger.Error("failed to store processed document", "error", err)
		h.writeEvent(w, "error", map[string]string{"error": err.Error()})
		return
	}

	h.writeEvent(w, "document", doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	results, err := h.sys.Search(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd ShareCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	share, err := h.sys.CreateShare(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, share)
}

func (h *Handler) FindShare(w http.ResponseWriter, r *http.Request) {
	share, err := h.sys.FindShare(r.Context(), r.PathValue("shareId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, share)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	format := ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = ExportText
	}

	data, contentType, err := h.sys.Export(r.Context(), id, format)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.txt"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// viewRequest is the body of a view tracking call.
type viewRequest struct {
	PageNumber int        `json:"page_number"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
}

func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	event := ViewEvent{
		DocumentID: id,
		PageNumber: req.PageNumber,
		UserID:     req.UserID,
	}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	h.sys.TrackView(r.Context(), event)
	h.metrics.ViewEventTotal.Inc()

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) PageAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var pageNumber int
	if _, err := fmt.Sscanf(r.PathValue("page"), "%d", &pageNumber); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	thumbnail := r.URL.Query().Get("thumbnail") == "true"
	data, contentType, err := h.sys.PageAsset(r.Context(), id, pageNumber, thumbnail)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// parseUpload extracts the source file, creation metadata, and ingest
// options from a multipart upload, running validation before returning.
func (h *Handler) parseUpload(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrFileTooLarge, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, ingest.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	source := &ingest.SourceFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}
	if err := h.validator.Validate(source); err != nil {
		return nil, err
	}

	cmd := CreateCommand{
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		ModuleType:     r.FormValue("module_type"),
		OrganizationID: r.FormValue("organization_id"),
		WorkspaceID:    r.FormValue("workspace_id"),
	}
	if tags := r.FormValue("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				cmd.Tags = append(cmd.Tags, tag)
			}
		}
	}
	if settings := r.FormValue("settings"); settings != "" {
		var patch SettingsPatch
		if err := json.Unmarshal([]byte(settings), &patch); err != nil {
			return nil, fmt.Errorf("invalid settings: %w", err)
		}
		cmd.Settings = &patch
	}

	opts := ingest.Options{
		IncludeText: r.FormValue("include_text") != "false",
	}

	return &upload{file: source, cmd: cmd, opts: opts}, nil
}

// writeEvent emits one server-sent event and flushes it to the client.
func (h *Handler) writeEvent(w http.ResponseWriter, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal event", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", name)
	fmt.Fprintf(w, "data: %s\n\n", data)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *Handler) observeIngest(status string, start time.Time) {
	h.metrics.IngestTotal.WithLabelValues(status).Inc()
	h.metrics.IngestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}
