package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Info describes the running application as reported by GET /api/info.
type Info struct {
	Name               string
	Profiles           []string
	ConfigServerStatus string
	APIDocs            bool
}

// Handler serves the service's JSON endpoints.
type Handler struct {
	info  Info
	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler reporting the given application info.
func NewHandler(info Info, opts ...HandlerOption) *Handler {
	info.Profiles = append([]string{}, info.Profiles...)
	h := &Handler{
		info: info,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// handleHealth godoc
//
//	@Summary	Service health
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/api/health [get]
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInfo godoc
//
//	@Summary	Application name, active profiles and config server status
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	infoResponse
//	@Router		/api/info [get]
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := infoResponse{
		Name:               h.info.Name,
		Profiles:           h.info.Profiles,
		ConfigServerStatus: h.info.ConfigServerStatus,
		APIDocs:            h.info.APIDocs,
		Timestamp:          h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type infoResponse struct {
	Name               string    `json:"name"`
	Profiles           []string  `json:"profiles"`
	ConfigServerStatus string    `json:"configServerStatus,omitempty"`
	APIDocs            bool      `json:"apiDocs"`
	Timestamp          time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}
