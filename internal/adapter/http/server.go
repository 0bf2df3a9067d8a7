package http

import (
	"net/http"

	"github.com/wavehaus/transcode/internal/service"
)

// Server exposes the processing API consumed by the platform: submit
// endpoints called after a source file lands, and the read side behind the
// "processing status" UI.
type Server struct {
	mux      *http.ServeMux
	handlers *Handlers
}

func NewServer(statusSvc *service.StatusService, producer *service.Producer, audio *service.AudioWorker) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:      mux,
		handlers: NewHandlers(statusSvc, producer, audio),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handlers.Health())
	s.mux.HandleFunc("GET /api/contents/{contentID}/jobs", s.handlers.ContentJobs())
	s.mux.HandleFunc("POST /api/contents/{contentID}/transcode/audio", s.handlers.SubmitAudio())
	s.mux.HandleFunc("POST /api/contents/{contentID}/transcode/video", s.handlers.SubmitVideo())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
