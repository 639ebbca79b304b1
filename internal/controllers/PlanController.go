package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/repository"
	"tripgen/internal/services"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

var errPlanNotFound = errors.New("plan not found")

type PlanController struct {
	logger  providers.Logger
	service services.PlanServiceInterface
	cache   providers.CacheProviderInterface
}

func NewPlanController(logger providers.Logger, service services.PlanServiceInterface, cache providers.CacheProviderInterface) *PlanController {
	return &PlanController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type saveResponse struct {
	Success bool   `json:"success"`
	Slug    string `json:"slug,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (pc *PlanController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := pc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if errors.Is(err, errPlanNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Plan not found"})
		return
	}
	if err != nil {
		pc.logger.Errorf(providers.TypeGet, "%s: %s", cacheKey, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// Save reports validation and storage failures identically.
func (pc *PlanController) Save(v models.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		payload, err := io.ReadAll(r.Body)
		if err == nil {
			var slug string
			slug, err = pc.service.Save(r.Context(), v, payload)
			if err == nil {
				writeJSON(w, http.StatusOK, saveResponse{Success: true, Slug: slug})
				return
			}
		}

		pc.logger.Warnf(providers.TypePost, "Rejected %s plan: %s", v, err)
		writeJSON(w, http.StatusInternalServerError, saveResponse{
			Success: false,
			Error:   "Failed to save plan",
			Details: err.Error(),
		})
	}
}

func (pc *PlanController) List(v models.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		pc.serveFromCacheOrCompute(w, fmt.Sprintf("list:%s:%d", v, page), func() (any, error) {
			return pc.service.ListPage(r.Context(), v, page)
		})
	}
}

func (pc *PlanController) Get(v models.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if !repository.IsValidSlug(slug) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Plan not found"})
			return
		}
		pc.serveFromCacheOrCompute(w, fmt.Sprintf("plan:%s:%s", v, slug), func() (any, error) {
			return pc.fetch(r.Context(), v, slug)
		})
	}
}

func (pc *PlanController) fetch(ctx context.Context, v models.Version, slug string) (models.Record, error) {
	rec, err := pc.service.Get(ctx, v, slug)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errPlanNotFound
	}
	return rec, nil
}
