package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/user/paywall-reader/internal/bypass"
	"github.com/user/paywall-reader/internal/delivery/http/request"
	"github.com/user/paywall-reader/internal/delivery/http/response"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/internal/repository"
	"github.com/user/paywall-reader/internal/usecase"
	"github.com/user/paywall-reader/pkg/utils"
	"go.uber.org/zap"
)

// Pinger is a store the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	reader usecase.Reader
	logger *zap.Logger
	stores map[string]Pinger
}

// NewHandler creates the API handler. stores maps a store name to its health probe;
// only configured stores should be passed.
func NewHandler(reader usecase.Reader, logger *zap.Logger, stores map[string]Pinger) *Handler {
	return &Handler{
		reader: reader,
		logger: logger,
		stores: stores,
	}
}

func (h *Handler) HandleReadArticle(w http.ResponseWriter, r *http.Request) {
	var req request.ReadArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !utils.IsAbsoluteHTTPURL(req.URL) {
		h.writeJSONError(w, r, "Invalid URL format", http.StatusBadRequest)
		return
	}

	method := bypass.Default
	if req.Method != 0 {
		m, err := bypass.Parse(req.Method)
		if err != nil {
			h.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
		method = m
	}

	var (
		article *entity.Article
		err     error
	)
	if req.TryAll {
		article, err = h.reader.ReadAny(r.Context(), req.URL)
	} else {
		article, err = h.reader.Read(r.Context(), req.URL, method)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrNoContent) {
			h.writeJSONError(w, r, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to read article", zap.String("url", req.URL), zap.Error(err))
		h.writeJSONError(w, r, "Failed to fetch article through the bypass mirror", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) HandleGetArchived(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, r, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	article, err := h.reader.Archived(r.Context(), rawURL)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrArchiveDisabled):
			h.writeJSONError(w, r, err.Error(), http.StatusNotImplemented)
		case errors.Is(err, repository.ErrNotFound):
			h.writeJSONError(w, r, "No archived article for the given URL", http.StatusNotFound)
		default:
			h.logger.Error("Failed to load archived article", zap.String("url", rawURL), zap.Error(err))
			h.writeJSONError(w, r, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) HandleListMethods(w http.ResponseWriter, r *http.Request) {
	methods := make([]response.MethodResponse, 0, len(bypass.All()))
	for _, m := range bypass.All() {
		methods = append(methods, response.MethodResponse{ID: int(m), Name: m.Name(), Prefix: m.Prefix()})
	}
	h.writeJSON(w, http.StatusOK, methods)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"status": "ok"}
	healthy := true
	for name, store := range h.stores {
		if err := store.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("store", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		healthStatus["status"] = "degraded"
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func toArticleResponse(a *entity.Article) response.ArticleResponse {
	return response.ArticleResponse{
		SourceURL:  a.SourceURL,
		Method:     a.Method,
		MethodName: bypass.Method(a.Method).Name(),
		BypassURL:  a.BypassURL,
		Title:      a.Title,
		Author:     a.Author,
		Date:       a.Date,
		Body:       a.Body,
		Succeeded:  a.Succeeded(),
		FetchedAt:  a.FetchedAt,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, r *http.Request, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
