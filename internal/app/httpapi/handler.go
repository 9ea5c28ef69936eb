// Package httpapi exposes the careers REST API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	app "github.com/talenthub/careers-api/internal/app"
	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/services/applications"
	"github.com/talenthub/careers-api/internal/app/services/auth"
	"github.com/talenthub/careers-api/internal/metrics"
	"github.com/talenthub/careers-api/internal/middleware"
	"github.com/talenthub/careers-api/pkg/logger"
)

const maxCVSize = 10 << 20 // 10 MiB multipart memory limit

// Options configures the HTTP surface.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *logger.Logger

	// Credential endpoints are throttled per client IP.
	AuthRatePerSecond float64
	AuthRateBurst     int
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the careers REST API together with
// health and metrics endpoints.
func NewHandler(application *app.Application, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	if opts.AuthRatePerSecond <= 0 {
		opts.AuthRatePerSecond = 5
	}
	if opts.AuthRateBurst <= 0 {
		opts.AuthRateBurst = 10
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics())

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	limiter := middleware.NewRateLimiter(opts.AuthRatePerSecond, opts.AuthRateBurst, log)
	limiter.StartCleanup(10 * time.Minute)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/register", limiter.Handler(http.HandlerFunc(h.register))).Methods(http.MethodPost)
	api.Handle("/login", limiter.Handler(http.HandlerFunc(h.login))).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Auth(opts.JWTSecret, log))

	authed.HandleFunc("/logout", h.logout).Methods(http.MethodPost)

	// The literal route must precede the parameterised one.
	authed.HandleFunc("/job-roles/open", h.openJobRoles).Methods(http.MethodGet)
	authed.HandleFunc("/job-roles", h.listJobRoles).Methods(http.MethodGet)
	authed.HandleFunc("/job-roles/{id}", h.getJobRole).Methods(http.MethodGet)
	authed.HandleFunc("/job-roles/{id}/apply", h.requireRole(h.apply, user.RoleApplicant)).Methods(http.MethodPost)
	authed.HandleFunc("/job-roles/{id}/applications", h.requireRole(h.listApplications, user.RoleAdmin)).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id}/hire", h.requireRole(h.hire, user.RoleAdmin)).Methods(http.MethodPut)
	authed.HandleFunc("/applications/{id}/reject", h.requireRole(h.reject, user.RoleAdmin)).Methods(http.MethodPut)
	authed.HandleFunc("/applications/cv", h.requireRole(h.downloadCV, user.RoleAdmin)).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests are answered for every
	// path without per-route OPTIONS registrations.
	return middleware.NewCORSMiddleware(opts.AllowedOrigins).Handler(r)
}

func (h *handler) requireRole(next http.HandlerFunc, roles ...user.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		if !middleware.Allowed(claims.Role, roles...) {
			writeMessage(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(w, r)
	}
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth --------------------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.app.Auth.Register(r.Context(), payload.Email, payload.Password)
	if err != nil {
		var validationErr *auth.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeMessage(w, http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, auth.ErrEmailTaken):
			writeMessage(w, http.StatusConflict, err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    created.ID,
		"email": created.Email,
		"role":  created.Role,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.app.Auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// logout exists for API symmetry. Tokens are stateless, so the client simply
// discards its copy.
func (h *handler) logout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// --- job roles ---------------------------------------------------------------

func (h *handler) listJobRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.app.JobRoles.All(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(roles) == 0 {
		writeMessage(w, http.StatusNotFound, "no job roles found")
		return
	}
	writeJSON(w, http.StatusOK, jobRoleListResponse(roles))
}

func (h *handler) openJobRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.app.JobRoles.Open(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(roles) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, jobRoleListResponse(roles))
}

func (h *handler) getJobRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid job role ID")
		return
	}

	role, err := h.app.JobRoles.ByID(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if role == nil {
		writeMessage(w, http.StatusNotFound, "job role not found")
		return
	}
	writeJSON(w, http.StatusOK, jobRoleDetailResponse(*role))
}

// --- applications ------------------------------------------------------------

func (h *handler) apply(w http.ResponseWriter, r *http.Request) {
	jobRoleID, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid job role ID")
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())

	cv, err := readCV(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, applications.ErrCVRequired.Error())
		return
	}

	created, err := h.app.Applications.Create(r.Context(), claims.UserID, jobRoleID, cv)
	if err != nil {
		switch {
		case errors.Is(err, applications.ErrCVRequired):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, applications.ErrJobRoleNotFound):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, applications.ErrAlreadyApplied):
			writeMessage(w, http.StatusConflict, err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	metrics.RecordApplicationSubmitted()
	writeJSON(w, http.StatusOK, applicationResponse(created))
}

func readCV(r *http.Request) (*applications.CVFile, error) {
	if err := r.ParseMultipartForm(maxCVSize); err != nil {
		return nil, err
	}
	file, header, err := r.FormFile("cv")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &applications.CVFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *handler) listApplications(w http.ResponseWriter, r *http.Request) {
	jobRoleID, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid job role ID")
		return
	}

	apps, err := h.app.Applications.ListByJobRole(r.Context(), jobRoleID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(apps) == 0 {
		writeMessage(w, http.StatusNotFound, "no applications found for this job role")
		return
	}

	result := make([]map[string]any, 0, len(apps))
	for _, a := range apps {
		result = append(result, applicationResponse(a))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) hire(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "hired", h.app.Applications.Hire)
}

func (h *handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "rejected", h.app.Applications.Reject)
}

func (h *handler) decide(w http.ResponseWriter, r *http.Request, decision string, decide func(ctx context.Context, id int64) (application.Application, error)) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	decided, err := decide(r.Context(), id)
	if err != nil {
		var statusErr *applications.InvalidStatusError
		switch {
		case errors.Is(err, applications.ErrNotFound):
			writeMessage(w, http.StatusNotFound, err.Error())
		case errors.As(err, &statusErr):
			writeMessage(w, http.StatusConflict, statusErr.Error())
		case errors.Is(err, applications.ErrNoOpenPositions):
			writeMessage(w, http.StatusConflict, err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	metrics.RecordDecision(decision)
	writeJSON(w, http.StatusOK, applicationResponse(decided))
}

func (h *handler) downloadCV(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("applicationId")
	if raw == "" {
		writeMessage(w, http.StatusBadRequest, "missing applicationId query parameter")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid applicationId")
		return
	}

	url, err := h.app.Applications.CVDownloadURL(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, applications.ErrNotFound), errors.Is(err, applications.ErrCVMissing):
			writeMessage(w, http.StatusNotFound, err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// --- responses ---------------------------------------------------------------

func jobRoleListResponse(roles []jobrole.Role) []map[string]any {
	result := make([]map[string]any, 0, len(roles))
	for _, role := range roles {
		result = append(result, map[string]any{
			"id":            role.ID,
			"name":          role.Name,
			"location":      role.Location,
			"closingDate":   role.ClosingDate,
			"capability":    role.CapabilityName,
			"band":          role.BandName,
			"status":        role.StatusName,
			"openPositions": role.OpenPositions,
		})
	}
	return result
}

func jobRoleDetailResponse(role jobrole.Role) map[string]any {
	return map[string]any{
		"id":               role.ID,
		"name":             role.Name,
		"location":         role.Location,
		"closingDate":      role.ClosingDate,
		"description":      role.Description,
		"responsibilities": role.Responsibilities,
		"infoUrl":          role.InfoURL,
		"capability":       role.CapabilityName,
		"band":             role.BandName,
		"status":           role.StatusName,
		"openPositions":    role.OpenPositions,
	}
}

func applicationResponse(a application.Application) map[string]any {
	return map[string]any{
		"id":        a.ID,
		"userId":    a.UserID,
		"email":     a.Email,
		"jobRoleId": a.JobRoleID,
		"status":    a.Status,
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}
}

// --- helpers -----------------------------------------------------------------

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
