package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"factorhub/internal/domain"
	"factorhub/internal/registry"
	"factorhub/pkg/platform/middleware/auth"
)

// RegistryService is the proof-of-existence surface the transport needs.
type RegistryService interface {
	Register(ctx context.Context, fingerprint domain.Fingerprint, metadata string, registrar domain.Identity) (registry.Record, error)
	Verify(ctx context.Context, fingerprint domain.Fingerprint) (bool, error)
	Get(ctx context.Context, fingerprint domain.Fingerprint) (registry.Record, error)
}

// RegistryHandler serves document registration and verification.
type RegistryHandler struct {
	registry RegistryService
	recorded func()
}

// NewRegistryHandler builds the handler; recorded is invoked once per
// successful registration (metrics hook), nil to ignore.
func NewRegistryHandler(service RegistryService, recorded func()) *RegistryHandler {
	return &RegistryHandler{registry: service, recorded: recorded}
}

type registerRequest struct {
	Fingerprint string `json:"fingerprint"`
	Content     string `json:"content,omitempty"`
	Metadata    string `json:"metadata,omitempty"`
}

type recordResponse struct {
	Fingerprint  string `json:"fingerprint"`
	RegisteredAt string `json:"registered_at"`
	Registrar    string `json:"registrar"`
	Metadata     string `json:"metadata,omitempty"`
}

func toRecordResponse(rec registry.Record) recordResponse {
	return recordResponse{
		Fingerprint:  string(rec.Fingerprint),
		RegisteredAt: rec.RegisteredAt.Format(time.RFC3339),
		Registrar:    string(rec.Registrar),
		Metadata:     rec.Metadata,
	}
}

// handleRegister accepts either a precomputed fingerprint or raw document
// content to hash server-side, matching what the ingestion pipeline sends.
func (h *RegistryHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	fingerprint := domain.Fingerprint(req.Fingerprint)
	if fingerprint == "" && req.Content != "" {
		fingerprint = registry.ComputeFingerprint([]byte(req.Content))
	}
	record, err := h.registry.Register(r.Context(), fingerprint, req.Metadata, auth.Caller(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if h.recorded != nil {
		h.recorded()
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(record))
}

func (h *RegistryHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	fingerprint := domain.Fingerprint(chi.URLParam(r, "fingerprint"))
	exists, err := h.registry.Verify(r.Context(), fingerprint)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": exists})
}

func (h *RegistryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	fingerprint := domain.Fingerprint(chi.URLParam(r, "fingerprint"))
	record, err := h.registry.Get(r.Context(), fingerprint)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}
