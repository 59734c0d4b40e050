package submit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// emailPattern accepts "local@domain.tld" with no whitespace anywhere.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	service   *Service
	staticDir string
}

func NewHandler(service *Service, staticDir string) *Handler {
	return &Handler{service: service, staticDir: staticDir}
}

// Submit accepts {channel, email}, validates, and queues a job.
// Responds 202 with the job ID; validation problems are a 400 with no
// side effects.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Channel string `json:"channel"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Missing required fields: channel and email", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "received submission", "channel", req.Channel)

	if req.Channel == "" || req.Email == "" {
		h.writeError(w, "Missing required fields: channel and email", http.StatusBadRequest)
		return
	}
	if !ValidEmail(req.Email) {
		h.writeError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	j, err := h.service.Submit(ctx, strings.TrimSpace(req.Channel), req.Email)
	if err != nil {
		slog.ErrorContext(ctx, "submission failed", "error", err)
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	resp := map[string]interface{}{
		"success": true,
		"jobId":   j.ID,
		"message": "Your request has been queued. You will get an email soon with improved suggestions for your youtube videos",
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Home serves the landing page verbatim from disk.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticDir, "index.html")
	html, err := os.ReadFile(path) // #nosec G304 -- path comes from startup config, not the request
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load homepage", "error", err, "path", path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		resp := map[string]string{
			"error":   "Failed to load homepage",
			"message": err.Error(),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode error response", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		slog.Error("failed to write homepage", "error", err)
	}
}

// ValidEmail reports whether the address matches local@domain.tld with
// no embedded whitespace.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
