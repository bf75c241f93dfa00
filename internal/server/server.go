// Package server exposes each pipeline job as a POST endpoint taking a JSON
// body with a media URL.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avelichko/podcut/internal/types"
)

// Jobs is the pipeline surface the HTTP layer drives. It is an interface so
// handler tests can run against a fake.
type Jobs interface {
	ProcessPodcast(ctx context.Context, audioURL string) ([]string, error)
	ProcessAIPodcast(ctx context.Context, audioURL string) ([]string, error)
	ProcessVideoPodcast(ctx context.Context, videoURL string) ([]types.ClipRecord, error)
	AbstractSummary(ctx context.Context, podcastURL string) (string, error)
}

type Server struct {
	jobs Jobs
	log  *slog.Logger
}

func New(jobs Jobs, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{jobs: jobs, log: log}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/audio-podcast-key-moments", s.audioKeyMoments).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/audio-podcast-ai-key-moments", s.audioAIKeyMoments).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/video-podcast-key-moments", s.videoKeyMoments).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/abstract-summary", s.abstractSummary).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) audioKeyMoments(w http.ResponseWriter, req *http.Request) {
	s.keyMoments(w, req, s.jobs.ProcessPodcast)
}

func (s *Server) audioAIKeyMoments(w http.ResponseWriter, req *http.Request) {
	s.keyMoments(w, req, s.jobs.ProcessAIPodcast)
}

func (s *Server) keyMoments(w http.ResponseWriter, req *http.Request, run func(context.Context, string) ([]string, error)) {
	audioURL, ok := s.requireField(w, req, "audio_url")
	if !ok {
		return
	}
	urls, err := run(req.Context(), audioURL)
	if err != nil {
		s.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"video_urls": urls})
}

func (s *Server) videoKeyMoments(w http.ResponseWriter, req *http.Request) {
	videoURL, ok := s.requireField(w, req, "video_url")
	if !ok {
		return
	}
	records, err := s.jobs.ProcessVideoPodcast(req.Context(), videoURL)
	if err != nil {
		s.fail(w, req, err)
		return
	}
	urls := make([]string, 0, len(records))
	for _, rec := range records {
		urls = append(urls, rec.URL)
	}
	writeJSON(w, http.StatusOK, map[string]any{"video_urls": urls})
}

func (s *Server) abstractSummary(w http.ResponseWriter, req *http.Request) {
	podcastURL, ok := s.requireField(w, req, "podcast_url")
	if !ok {
		return
	}
	summary, err := s.jobs.AbstractSummary(req.Context(), podcastURL)
	if err != nil {
		s.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

// requireField decodes the request body and pulls out one required string
// field, answering 400 when it is absent.
func (s *Server) requireField(w http.ResponseWriter, req *http.Request, field string) (string, bool) {
	var body map[string]string
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return "", false
	}
	v := body[field]
	if v == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": field + " is required"})
		return "", false
	}
	return v, true
}

func (s *Server) fail(w http.ResponseWriter, req *http.Request, err error) {
	s.log.Error("job failed", "path", req.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// corsMiddleware keeps the surface open to all origins, matching the
// browser clients that call it directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
