package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"resumescan/internal/analysis"
	"resumescan/internal/errors"
	"resumescan/internal/formatters"
	"resumescan/internal/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// analyzeHandler runs a full analysis
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	opts := analysis.AnalyzeOptions{
		JobDescription:    req.JobDescription,
		DisableEnrichment: req.Enrich != nil && !*req.Enrich,
	}
	report := s.engine.AnalyzeResume(r.Context(), req.Resume, opts)
	s.writeReport(w, r, report)
}

// grammarHandler runs a grammar-only check
func (s *Server) grammarHandler(w http.ResponseWriter, r *http.Request) {
	var req types.GrammarRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	opts := analysis.CheckOptions{DisableEnrichment: req.Enrich != nil && !*req.Enrich}
	report := s.engine.CheckGrammar(r.Context(), req.Resume, opts)
	s.writeReport(w, r, report)
}

// healthHandler reports liveness plus the state of optional dependencies.
// Enrichment and cache problems degrade the status but never fail the
// check, since analysis works without them.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	enrichment := map[string]any{"enabled": s.enricher != nil}
	if s.enricher != nil {
		healthy := s.enricher.Healthy()
		enrichment["provider"] = s.enricher.Provider()
		enrichment["healthy"] = healthy
		if !healthy {
			status = "degraded"
		}
	}

	cacheStatus := map[string]any{"enabled": s.cache != nil}
	if s.cache != nil {
		stats := s.cache.Stats()
		cacheStatus["connected"] = stats["connected"]
		if connected, _ := stats["connected"].(bool); !connected {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"service":    "resumescan",
		"version":    s.Version,
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"enrichment": enrichment,
		"cache":      cacheStatus,
	})
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumescan",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys()) > 0,
		},
		"rate_limiting": s.RateLimiter.GetStats(),
		"enrichment":    s.enricher.Stats(),
		"cache":         s.cache.Stats(),
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeRequest parses and validates a JSON body, writing the error
// response itself when it fails
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	err := parseJSONRequest(r, v)
	if err == nil {
		if verr := validate.Struct(v); verr != nil {
			err = errors.NewValidationError(errors.ErrCodeInvalidRequest, validationMessage(verr), verr)
		}
	}
	if err == nil {
		return true
	}

	s.Logger.Debug("Rejected request", "endpoint", r.URL.Path, "error", err.Error())
	s.writeAppError(w, r, err)
	return false
}

// writeReport renders a report in the format picked by the "format" query
// parameter, JSON by default
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, report any) {
	format := r.URL.Query().Get("format")
	if format == "" || format == formatters.FormatJSON {
		writeJSON(w, http.StatusOK, report)
		return
	}

	out, err := formatters.GlobalRegistry.Format(report, format)
	if err != nil {
		s.writeAppError(w, r, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported format %q", format), err))
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == formatters.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, out); err != nil {
		s.Logger.LogError(err, "Failed to write report")
	}
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	title := http.StatusText(status)
	message := err.Error()
	code := ""
	if appErr, ok := errors.AsAppError(err); ok {
		title = appErr.Message
		code = appErr.Code
		message = ""
		if appErr.Cause != nil {
			message = appErr.Cause.Error()
		}
	}
	writeErrorResponse(w, r, title, message, code, status)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Content-Type must be application/json", nil)
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeRequestTooLarge,
				fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid JSON body", err)
	}
	if dec.More() {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Request body must contain a single JSON object", nil)
	}
	return nil
}

// validationMessage flattens validator errors into one line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return "Invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s exceeds %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent, so an encode error cannot reach the client
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, title, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}
