package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/infrastructure/logger"
	"github.com/wavehaus/transcode/internal/service"
)

type Handlers struct {
	statusSvc *service.StatusService
	producer  *service.Producer
	audio     *service.AudioWorker
}

func NewHandlers(statusSvc *service.StatusService, producer *service.Producer, audio *service.AudioWorker) *Handlers {
	return &Handlers{statusSvc: statusSvc, producer: producer, audio: audio}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok"}
		if h.audio != nil {
			resp["audio_worker"] = h.audio.Status()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handlers) ContentJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := r.PathValue("contentID")
		if contentID == "" {
			writeError(w, http.StatusBadRequest, "missing content id")
			return
		}

		status, err := h.statusSvc.ContentStatus(r.Context(), contentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no jobs for content")
				return
			}
			logger.Error.Printf("content jobs %s: %v", logger.SanitizeForLog(contentID), err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}

func (h *Handlers) SubmitAudio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := r.PathValue("contentID")
		if contentID == "" {
			writeError(w, http.StatusBadRequest, "missing content id")
			return
		}

		jobs, err := h.producer.SubmitAudio(r.Context(), contentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "content not found")
				return
			}
			logger.Error.Printf("submit audio %s: %v", logger.SanitizeForLog(contentID), err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{"jobs": len(jobs)})
	}
}

func (h *Handlers) SubmitVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := r.PathValue("contentID")
		if contentID == "" {
			writeError(w, http.StatusBadRequest, "missing content id")
			return
		}

		if err := h.producer.SubmitVideo(r.Context(), contentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "content not found")
				return
			}
			logger.Error.Printf("submit video %s: %v", logger.SanitizeForLog(contentID), err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
