package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/core/ports"
)

// APIHandler handles HTTP requests for the script catalog and license
// issuance.
type APIHandler struct {
	catalog  ports.CatalogService
	licenses ports.LicenseService
	keys     ports.APIKeyRepository
	oracle   ports.DemoKeyOracle
	validate *validator.Validate
	checks   map[string]func(context.Context) error
}

// NewAPIHandler creates and returns a new APIHandler instance. checks holds
// the named dependency probes the health endpoint reports on.
func NewAPIHandler(
	catalog ports.CatalogService,
	licenses ports.LicenseService,
	keys ports.APIKeyRepository,
	oracle ports.DemoKeyOracle,
	checks map[string]func(context.Context) error,
) *APIHandler {
	return &APIHandler{
		catalog:  catalog,
		licenses: licenses,
		keys:     keys,
		oracle:   oracle,
		validate: newValidator(),
		checks:   checks,
	}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public Routes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)
	mux.HandleFunc("GET /scripts", h.ListScripts)
	mux.HandleFunc("GET /scripts/{id}", h.GetScript)
	mux.HandleFunc("POST /scripts/{id}/generate_demo_encoded", h.GenerateDemoEncoded)
	mux.HandleFunc("POST /scripts/{id}/update_issued", h.UpdateIssued)

	// Middleware
	auth := AuthMiddleware(h.keys)

	// Protected Routes
	mux.Handle("POST /scripts/{id}/generate_plain", auth(http.HandlerFunc(h.GeneratePlain)))
	mux.Handle("POST /scripts/{id}/generate_encoded", auth(http.HandlerFunc(h.GenerateEncoded)))
	mux.Handle("GET /issued_licenses", auth(http.HandlerFunc(h.ListIssued)))
}

// Pinger is a dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecks bundles the standard dependency probes for the service.
func HealthChecks(db Pinger, cache Pinger) map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"database": db.Ping,
		"redis":    cache.Ping,
	}
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)

	for name, check := range h.checks {
		if checkErr := check(r.Context()); checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	resp := map[string]interface{}{
		"status":  status,
		"details": details,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "DEGRADED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode health check response: %v", err)
	}
}

func (h *APIHandler) ListScripts(w http.ResponseWriter, r *http.Request) {
	filter, err := scriptFilterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scripts, err := h.catalog.ListScripts(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(scripts); err != nil {
		log.Printf("failed to encode scripts response: %v", err)
	}
}

func (h *APIHandler) GetScript(w http.ResponseWriter, r *http.Request) {
	script, err := h.catalog.GetScript(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(script); err != nil {
		log.Printf("failed to encode script response: %v", err)
	}
}

func (h *APIHandler) GeneratePlain(w http.ResponseWriter, r *http.Request) {
	script, ok := h.downloadableScript(w, r)
	if !ok {
		return
	}

	var req generatePlainRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	if !script.AllowIssuePlain && !hasPermission(r, domain.PermForceIssuePlain) {
		http.Error(w, "Forbidden: script does not allow plain issue", http.StatusForbidden)
		return
	}

	if err := domain.ValidateExtraParams(*script, req.ExtraParams); err != nil {
		h.writeError(w, err)
		return
	}

	config := domain.LicenseConfig{
		Encode:      false,
		UserID:      callerUserID(r),
		ExtraParams: req.ExtraParams,
	}

	artifact, err := h.licenses.GenerateScript(r.Context(), *script, config)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func (h *APIHandler) GenerateEncoded(w http.ResponseWriter, r *http.Request) {
	script, ok := h.downloadableScript(w, r)
	if !ok {
		return
	}

	var req generateEncodedRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	expires, err := parseExpires(req.Expires, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	config := domain.LicenseConfig{
		Encode:      true,
		UserID:      callerUserID(r),
		LicenseKey:  req.LicenseKey,
		Expires:     expires,
		ExtraParams: req.ExtraParams,
	}

	// The capability flag is chosen by the shape of the request, before any
	// expiration auto-fill happens in the core.
	if !script.AllowsIssue(config.IssueType()) && !hasPermission(r, domain.PermForceIssueEncoded) {
		http.Error(w, "Forbidden: script does not allow this encoded issue", http.StatusForbidden)
		return
	}

	if err := domain.ValidateExtraParams(*script, req.ExtraParams); err != nil {
		h.writeError(w, err)
		return
	}

	artifact, err := h.licenses.GenerateScript(r.Context(), *script, config)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func (h *APIHandler) GenerateDemoEncoded(w http.ResponseWriter, r *http.Request) {
	script, ok := h.downloadableScript(w, r)
	if !ok {
		return
	}

	var req generateDemoEncodedRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	isDemo, err := h.oracle.IsDemoKey(r.Context(), req.LicenseKey)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !isDemo {
		http.Error(w, "Cannot issue license for not demo key", http.StatusForbidden)
		return
	}

	expires, err := parseExpires(req.Expires, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := domain.ValidateExtraParams(*script, req.ExtraParams); err != nil {
		h.writeError(w, err)
		return
	}

	config := domain.LicenseConfig{
		Encode:      true,
		LicenseKey:  &req.LicenseKey,
		Expires:     expires,
		ExtraParams: req.ExtraParams,
	}

	artifact, err := h.licenses.GenerateScript(r.Context(), *script, config)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func (h *APIHandler) UpdateIssued(w http.ResponseWriter, r *http.Request) {
	script, ok := h.downloadableScript(w, r)
	if !ok {
		return
	}

	var req updateIssuedRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	expires, err := parseExpires(req.Expires, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := domain.ValidateExtraParams(*script, req.ExtraParams); err != nil {
		h.writeError(w, err)
		return
	}

	config := domain.LicenseConfig{
		Encode:      true,
		LicenseKey:  &req.LicenseKey,
		Expires:     expires,
		ExtraParams: req.ExtraParams,
	}

	artifact, err := h.licenses.UpdateIssued(r.Context(), *script, config)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func (h *APIHandler) ListIssued(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	issued, err := h.catalog.ListIssued(r.Context(), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(issued); err != nil {
		log.Printf("failed to encode issued licenses response: %v", err)
	}
}

// downloadableScript loads the requested script and rejects the request when
// it is missing or not issuable. A false return means a response was written.
func (h *APIHandler) downloadableScript(w http.ResponseWriter, r *http.Request) (*domain.Script, bool) {
	script, err := h.catalog.GetScript(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	if !script.Downloadable() {
		http.Error(w, "Forbidden: script is not downloadable", http.StatusForbidden)
		return nil, false
	}
	return script, true
}

func (h *APIHandler) decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrScriptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeArtifact(w http.ResponseWriter, artifact *domain.GeneratedScript) {
	w.Header().Set("Content-Type", "text/x-python")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	if _, err := w.Write(artifact.Data); err != nil {
		log.Printf("failed to write artifact response: %v", err)
	}
}

func scriptFilterFromQuery(r *http.Request) (domain.ScriptFilter, error) {
	var filter domain.ScriptFilter
	q := r.URL.Query()

	if v := q.Get("category"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("tag"); v != "" {
		filter.Tag = &v
	}
	if v := q.Get("without_tag"); v != "" {
		filter.WithoutTag = &v
	}
	for name, dst := range map[string]**bool{
		"enabled":   &filter.Enabled,
		"is_active": &filter.IsActive,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return filter, fmt.Errorf("invalid %s filter: %w", name, err)
			}
			*dst = &b
		}
	}
	return filter, nil
}

func pageFromQuery(r *http.Request) (domain.Page, error) {
	var page domain.Page
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("invalid limit: %w", err)
		}
		page.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("invalid offset: %w", err)
		}
		page.Offset = offset
	}
	return page, nil
}
