// Package api exposes BOM enrichment over HTTP.
//
// The API has two endpoints:
//
//	GET  /healthz   liveness probe
//	POST /enrich    multipart upload: "bom" (CycloneDX JSON or XML) and
//	                "plan" (TOML); responds with the enriched document in
//	                the same format as the upload
//
// Validation failures return 422 with a JSON error body carrying the
// machine-readable code; malformed uploads return 400. All instances behind
// one deployment should share a Redis cache so repeat lookups stay off the
// ClearlyDefined API.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bomend/bomend/pkg/cache"
	"github.com/bomend/bomend/pkg/config"
	"github.com/bomend/bomend/pkg/enrich"
	bomenderrors "github.com/bomend/bomend/pkg/errors"
	"github.com/bomend/bomend/pkg/httputil"
	"github.com/bomend/bomend/pkg/integrations/clearlydefined"
	"github.com/bomend/bomend/pkg/sbom"
)

// maxUploadBytes caps the multipart form size held in memory.
const maxUploadBytes = 32 << 20

// Server handles enrichment requests. One server holds one rate limiter, so
// all requests served by a process share the outbound rate bound.
type Server struct {
	logger *log.Logger
	defs   *clearlydefined.Client
}

// NewServer creates an API server. Lookup responses are cached in c; an
// empty serviceURL selects the production ClearlyDefined endpoint.
func NewServer(logger *log.Logger, c cache.Cache, serviceURL string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		logger: logger,
		defs:   clearlydefined.NewClient(c, httputil.NewDefaultLimiter(), serviceURL),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/enrich", s.handleEnrich)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, bomenderrors.Wrap(bomenderrors.ErrCodeInvalidFormat, err, "parse multipart form"))
		return
	}

	bomData, bomName, err := formFile(r, "bom")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	planData, _, err := formFile(r, "plan")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	format := sbom.DetectFormat(bomName, bomData)
	doc, err := sbom.Parse(bomData, format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	plan, err := config.Parse(planData)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	actions := plan.Actions(s.defs, s.logger)
	res := enrich.NewRunner(s.logger).Run(r.Context(), doc, actions)
	enriched, err := res.Unwrap()
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	data, err := sbom.Serialize(enriched, format)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	contentType := "application/json"
	if format == sbom.FormatXML {
		contentType = "application/xml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// formFile reads one uploaded file from the multipart form.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", bomenderrors.New(bomenderrors.ErrCodeInvalidFormat, "missing form file %q", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", bomenderrors.Wrap(bomenderrors.ErrCodeInvalidFormat, err, "read form file %q", field)
	}
	return data, header.Filename, nil
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	var body errorBody
	body.Error.Code = string(bomenderrors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(bomenderrors.ErrCodeInternal)
	}
	body.Error.Message = bomenderrors.UserMessage(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
