package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/schemegpt/scheme-assistant/internal/config"
	"github.com/schemegpt/scheme-assistant/internal/core/domain"
	"github.com/schemegpt/scheme-assistant/internal/core/ports"
	"github.com/schemegpt/scheme-assistant/internal/observability/metrics"
)

const (
	maxUploadBytes = 32 << 20

	defaultMaxInFlight      = 64
	defaultBackpressureWait = 5 * time.Second
)

type Router struct {
	ingestor ports.DocumentIngestor
	answerer ports.QuestionAnswerer
	reader   ports.DocumentReader

	serverMetrics *metrics.HTTPServerMetrics
	serviceName   string
	cfg           config.Config
}

func NewRouter(
	cfg config.Config,
	ingestor ports.DocumentIngestor,
	answerer ports.QuestionAnswerer,
	reader ports.DocumentReader,
	serverMetrics *metrics.HTTPServerMetrics,
	serviceName string,
) *Router {
	return &Router{
		ingestor:      ingestor,
		answerer:      answerer,
		reader:        reader,
		serverMetrics: serverMetrics,
		serviceName:   serviceName,
		cfg:           cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/rag/ask", rt.askRAG)
	if rt.serverMetrics != nil {
		mux.Handle("/metrics", rt.serverMetrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, defaultMaxInFlight, defaultBackpressureWait)
	if rt.cfg.APIRateLimitRPS > 0 && rt.cfg.APIRateLimitBurst > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onRateLimited)
	}
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware(rt.serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) onRateLimited(path string) {
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordRateLimited(rt.serviceName, path)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) askRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordRAGObservation(rt.serviceName, "/v1/rag/ask", len(answer.Sources), answer.Confidence, time.Since(start))
		rt.serverMetrics.RecordSchemeDetection(rt.serviceName, answer.DetectedScheme)
		if schemeFilterFellBack(answer) {
			rt.serverMetrics.RecordFilterFallback(rt.serviceName)
		}
	}

	writeJSON(w, http.StatusOK, answer)
}

// schemeFilterFellBack reports whether the scheme filter fell back to the
// unfiltered result set: a scheme was detected but at least one surfaced
// source does not belong to it. Filtered output only ever contains matching
// sources, so a foreign source means the fail-open path ran.
func schemeFilterFellBack(answer *domain.AnswerPackage) bool {
	if answer.DetectedScheme == "" {
		return false
	}
	for _, src := range answer.Sources {
		if !strings.Contains(domain.NormalizeSource(src.Source), answer.DetectedScheme) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
