package transport

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"uistudio/app/usecase"
	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
	"uistudio/internal/stream"
)

const (
	maxBodyBytes     = 20 << 20
	stageBuffer      = 8
	wsFirstFrameWait = 30 * time.Second
	transportSSE     = "sse"
	transportWS      = "ws"
)

type StudioHandler struct {
	generation usecase.GenerationUsecase
	runs       usecase.RunUsecase
	files      usecase.FilesUsecase
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

func NewStudioHandler(
	generation usecase.GenerationUsecase,
	runs usecase.RunUsecase,
	files usecase.FilesUsecase,
	logger *slog.Logger,
) *StudioHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudioHandler{
		generation: generation,
		runs:       runs,
		files:      files,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Middleware для метрик
func (h *StudioHandler) withMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		method := r.Method

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		statusStr := strconv.Itoa(rw.status)
		metrics.ObserveHTTPRequest(method, path, statusStr, time.Since(start))
		if rw.status >= 400 {
			metrics.IncHTTPError(method, path, statusStr)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (h *StudioHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/generate", h.withMetrics(h.handleGenerate)).Methods(http.MethodPost)
	api.HandleFunc("/generate/ws", h.withMetrics(h.handleGenerateWS)).Methods(http.MethodGet)
	api.HandleFunc("/preview", h.withMetrics(h.handlePreview)).Methods(http.MethodPost)
	api.HandleFunc("/runs", h.withMetrics(h.handleSubmitRun)).Methods(http.MethodPost)
	api.HandleFunc("/runs", h.withMetrics(h.handleListRuns)).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", h.withMetrics(h.handleGetRun)).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", h.withMetrics(h.handleDeleteRun)).Methods(http.MethodDelete)
	api.HandleFunc("/runs/{id}/files", h.withMetrics(h.handleGetFiles)).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/preview", h.withMetrics(h.handleRunPreview)).Methods(http.MethodGet)
	api.HandleFunc("/health", h.withMetrics(h.handleHealth)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", metrics.Handler())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeHTML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrRunActive):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type imagePayload struct {
	// Data is base64, optionally as a data URL.
	Data     string `json:"data"`
	MimeType string `json:"mime_type,omitempty"`
}

type generateReq struct {
	Config entity.GenerationConfig `json:"config"`
	Prompt string                  `json:"prompt,omitempty"`
	Image  *imagePayload           `json:"image,omitempty"`
}

func (g generateReq) toRequest() (entity.Request, error) {
	req := entity.Request{Config: g.Config, Prompt: g.Prompt}
	if g.Image == nil {
		return req, nil
	}
	data, mime := g.Image.Data, g.Image.MimeType
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return req, &entity.ValidationError{Field: "image.data", Message: "data URL must be base64 encoded"}
		}
		if mime == "" {
			mime = strings.TrimSuffix(meta, ";base64")
		}
		data = payload
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return req, &entity.ValidationError{Field: "image.data", Message: "is not valid base64"}
	}
	req.Image = &entity.Image{Data: raw, MimeType: mime}
	return req, nil
}

func decodeRequest(r *http.Request, w http.ResponseWriter) (entity.Request, error) {
	var body generateReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return entity.Request{}, &entity.ValidationError{Field: "body", Message: err.Error()}
	}
	req, err := body.toRequest()
	if err != nil {
		return entity.Request{}, err
	}
	return req, req.Validate()
}

// run executes req on a channel owned by this connection and forwards its
// stages to enc. The run itself is detached from the request so that its
// outcome is stored even when the client goes away.
func (h *StudioHandler) run(ctx context.Context, req entity.Request, enc stream.Encoder) error {
	ch := stream.NewChannel(stageBuffer)
	go func() {
		defer ch.Close()
		if _, err := h.generation.Generate(context.WithoutCancel(ctx), req, ch); err != nil {
			h.logger.Error("generation failed", "err", err)
		}
	}()

	err := stream.Forward(ctx, ch.Stages(), enc)
	if err != nil {
		ch.Cancel()
	}
	return err
}

// POST /api/v1/generate
func (h *StudioHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, w)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	metrics.IncStreamConnections(transportSSE)
	defer metrics.DecStreamConnections(transportSSE)

	if err := h.run(r.Context(), req, stream.NewSSEWriter(w)); err != nil {
		h.logger.Info("sse stream ended early", "err", err)
	}
}

// GET /api/v1/generate/ws
func (h *StudioHandler) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	metrics.IncStreamConnections(transportWS)
	defer metrics.DecStreamConnections(transportWS)

	enc := stream.NewWSWriter(conn)

	var body generateReq
	_ = conn.SetReadDeadline(time.Now().Add(wsFirstFrameWait))
	if err := conn.ReadJSON(&body); err != nil {
		_ = enc.WriteFrame(stream.Frame{Type: "error", Error: fmt.Sprintf("bad request frame: %v", err)})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	req, err := body.toRequest()
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		_ = enc.WriteFrame(stream.Frame{Type: "error", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.run(ctx, req, enc); err != nil {
		h.logger.Info("websocket stream ended early", "err", err)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

type previewReq struct {
	Source    string           `json:"source"`
	TechStack entity.TechStack `json:"tech_stack"`
}

// POST /api/v1/preview
func (h *StudioHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	stack, err := entity.ParseTechStack(string(req.TechStack))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := h.files.RenderSource(req.Source, stack)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeHTML(w, doc)
}

// POST /api/v1/runs
func (h *StudioHandler) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, w)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	run, err := h.generation.Submit(r.Context(), req)
	if err != nil {
		h.logger.Error("submit run failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

// GET /api/v1/runs
func (h *StudioHandler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.ListRuns(r.Context())
	if err != nil {
		h.logger.Error("list runs failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*entity.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// GET /api/v1/runs/{id}
func (h *StudioHandler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DELETE /api/v1/runs/{id}
func (h *StudioHandler) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.runs.DeleteRun(r.Context(), id); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("delete run failed", "id", id, "err", err)
		}
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/runs/{id}/files
func (h *StudioHandler) handleGetFiles(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	files, err := h.files.GetFiles(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// GET /api/v1/runs/{id}/preview
func (h *StudioHandler) handleRunPreview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	doc, err := h.files.Preview(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeHTML(w, doc)
}

// GET /api/v1/health
func (h *StudioHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"ok": true,
		"ts": time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, status)
}
