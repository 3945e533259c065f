package handler

import (
	"net/http"
	"strconv"

	"gateless/internal/availability/service"
	apperrors "gateless/pkg/errors"
	httputil "gateless/pkg/http"
	"gateless/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lat, err := httputil.ExtractFloat(r, "lat")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	lng, err := httputil.ExtractFloat(r, "lng")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	// Radius is optional; the service clamps it to the configured maximum.
	var radius float64
	if s := r.URL.Query().Get("radius"); s != "" {
		radius, err = strconv.ParseFloat(s, 64)
		if err != nil {
			h.writeError(w, "Search", apperrors.InvalidInput("invalid radius parameter: "+s))
			return
		}
	}

	start, err := httputil.ExtractTime(r, "start", true)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	end, err := httputil.ExtractTime(r, "end", true)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	results, err := h.service.Search(r.Context(), lat, lng, radius, start, end)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/search", h.Search)
}
