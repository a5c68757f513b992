// Package http exposes the JSON API for podcast episodes.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"podcastit/internal/episodes"
	appmiddleware "podcastit/internal/middleware"
)

// Server wires HTTP routing for the episode API.
type Server struct {
	logger   *slog.Logger
	episodes *episodes.Service
}

// Options tune the router. The zero value uses sensible defaults.
type Options struct {
	// CreatesPerMinute caps episode creation per client IP. Zero means 30.
	CreatesPerMinute int
}

// NewServer constructs a chi router implementing http.Handler.
func NewServer(logger *slog.Logger, service *episodes.Service, opts Options) http.Handler {
	srv := &Server{
		logger:   logger,
		episodes: service,
	}

	perMinute := opts.CreatesPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	createLimiter := appmiddleware.NewRateLimiter(rate.Limit(float64(perMinute)/60), perMinute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/episodes", srv.handleListEpisodes)
		r.With(createLimiter.Handler).Post("/episodes", srv.handleCreateEpisode)
		r.Delete("/episodes", srv.handleDeleteAllEpisodes)
		r.Get("/episodes/{slug}", srv.handleGetEpisode)
		r.Delete("/episodes/{slug}", srv.handleDeleteEpisode)
		r.Get("/audio/{file}", srv.handleGetAudio)
	})

	return r
}

func (s *Server) handleListEpisodes(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		s.clientError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(r, "pageSize", 10)
	if err != nil || pageSize < 1 {
		s.clientError(w, http.StatusBadRequest, "pageSize must be a positive integer")
		return
	}

	filter := episodes.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	list, err := s.episodes.List(r.Context(), filter)
	if err != nil {
		s.serverError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"episodes": list,
	})
}

func (s *Server) handleCreateEpisode(w http.ResponseWriter, r *http.Request) {
	var input episodes.EpisodeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.clientError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	episode, err := s.episodes.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, episodes.ErrInvalidInput):
			s.clientError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, episodes.ErrConflict):
			s.writeJSON(w, http.StatusConflict, map[string]any{
				"message": "Conflict: episode already exists",
			})
		default:
			s.serverError(w, err)
		}
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"episode": episode,
	})
}

func (s *Server) handleGetEpisode(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	episode, err := s.episodes.Get(r.Context(), slug)
	if err != nil {
		if errors.Is(err, episodes.ErrNotFound) {
			s.clientError(w, http.StatusNotFound, "Episode not found")
			return
		}
		s.serverError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"episode": episode,
	})
}

func (s *Server) handleDeleteEpisode(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	deleted, err := s.episodes.Delete(r.Context(), slug)
	if err != nil {
		if errors.Is(err, episodes.ErrNotFound) {
			s.clientError(w, http.StatusNotFound, "Episode not found for deletion")
			return
		}
		s.serverError(w, err)
		return
	}

	deleted.Status = "deleted"
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"episode": deleted,
	})
}

func (s *Server) handleDeleteAllEpisodes(w http.ResponseWriter, r *http.Request) {
	if err := s.episodes.DeleteAll(r.Context()); err != nil {
		s.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	data, err := s.episodes.Audio(r.Context(), file)
	if err != nil {
		if errors.Is(err, episodes.ErrNotFound) {
			s.clientError(w, http.StatusNotFound, "Audio not found")
			return
		}
		s.serverError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request error", slog.String("error", err.Error()))
	s.writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "internal server error",
	})
}

func (s *Server) clientError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
