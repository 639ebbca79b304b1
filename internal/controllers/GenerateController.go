package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/ratelimit"
	"tripgen/internal/services"

	json "github.com/goccy/go-json"
)

type GenerateController struct {
	logger  providers.Logger
	service services.GenerationServiceInterface
	now     func() time.Time
}

func NewGenerateController(logger providers.Logger, service services.GenerationServiceInterface) *GenerateController {
	return &GenerateController{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
}

type rateLimitResponse struct {
	Error      string `json:"error"`
	Type       string `json:"type"`
	IP         string `json:"ip,omitempty"`
	RetryAfter string `json:"retryAfter"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	Reset      int64  `json:"reset"`
}

// Generate streams the model output as plain text. Headers are held back
// until the first fragment arrives so that early failures still get a
// proper status code.
func (gc *GenerateController) Generate(v models.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var in services.GenerateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		ip := ratelimit.GetClientIP(r.Header)
		stream, err := gc.service.Generate(r.Context(), v, &in, ip, nil)
		if err != nil {
			gc.writeError(w, err)
			return
		}

		first, ok := <-stream.Fragments()
		if !ok {
			gc.writeError(w, stream.Err())
			return
		}

		h := w.Header()
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Cache-Control", "no-cache, no-transform")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		rc := http.NewResponseController(w)
		write := func(fragment string) bool {
			if _, err := w.Write([]byte(fragment)); err != nil {
				return false
			}
			_ = rc.Flush()
			return true
		}

		if !write(first) {
			return
		}
		for fragment := range stream.Fragments() {
			if !write(fragment) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			gc.logger.Errorf(providers.TypePost, "%s generation for %s ended early: %s", v, ip, err)
		}
	}
}

func (gc *GenerateController) writeError(w http.ResponseWriter, err error) {
	var inErr *services.InputError
	var rlErr *ratelimit.Error

	switch {
	case errors.As(err, &inErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input", Details: inErr.Details})
	case errors.As(err, &rlErr):
		gc.writeRateLimited(w, rlErr)
	default:
		if err == nil {
			err = errors.New("stream closed without output")
		}
		gc.logger.Errorf(providers.TypePost, "Generation failed: %s", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to generate plan", Details: err.Error()})
	}
}

func (gc *GenerateController) writeRateLimited(w http.ResponseWriter, rlErr *ratelimit.Error) {
	msg := "Too many requests from this IP, please try again later"
	if rlErr.Tier == ratelimit.TierGlobal {
		msg = "The service has reached its generation limit, please try again later"
	}

	h := w.Header()
	h.Set("Retry-After", strconv.FormatInt(rlErr.RetryAfterSeconds(gc.now()), 10))
	h.Set("X-RateLimit-Limit", strconv.Itoa(rlErr.Result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(rlErr.Result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(rlErr.Result.ResetAt, 10))

	writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{
		Error:      msg,
		Type:       string(rlErr.Tier),
		IP:         rlErr.IP,
		RetryAfter: rlErr.RetryAfter,
		Limit:      rlErr.Result.Limit,
		Remaining:  rlErr.Result.Remaining,
		Reset:      rlErr.Result.ResetAt,
	})
}
