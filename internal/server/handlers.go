// Package server provides HTTP handlers and server setup for the carwise API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"carwise/internal/core"
	"carwise/internal/search"
)

// ProfileService resolves VINs to profiles.
type ProfileService interface {
	Lookup(ctx context.Context, vin string) (core.CarProfile, error)
	Summary(ctx context.Context, vin string) (string, error)
}

// SearchService ranks live listings.
type SearchService interface {
	Search(ctx context.Context, criteria core.SearchCriteria, topK int) ([]search.ScoredListing, error)
	Recommendations(ctx context.Context, p search.RecommendationParams) ([]search.Recommendation, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	profiles ProfileService
	search   SearchService
}

// NewHandler creates a new handler over the two services
func NewHandler(profiles ProfileService, searchService SearchService) *Handler {
	return &Handler{
		profiles: profiles,
		search:   searchService,
	}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetCar handles GET /cars/:vin
func (h *Handler) GetCar(c echo.Context) error {
	profile, err := h.profiles.Lookup(c.Request().Context(), normalizeVIN(c.Param("vin")))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// CarSummaryResponse is the body of GET /cars/:vin/summary
type CarSummaryResponse struct {
	VIN     string `json:"vin"`
	Summary string `json:"summary"`
}

// GetCarSummary handles GET /cars/:vin/summary
func (h *Handler) GetCarSummary(c echo.Context) error {
	vin := normalizeVIN(c.Param("vin"))
	summary, err := h.profiles.Summary(c.Request().Context(), vin)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, CarSummaryResponse{VIN: vin, Summary: summary})
}

// SearchRequest is the body of POST /search
type SearchRequest struct {
	core.SearchCriteria
	TopK int `json:"top_k,omitempty"`
}

// SearchResponse is the body returned by POST /search
type SearchResponse struct {
	Results         []search.Result     `json:"results"`
	CriteriaApplied core.SearchCriteria `json:"criteria_applied"`
}

// Search handles POST /search
func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	if req.TopK < 0 {
		return handleError(c, core.NewInvalidRequestError("top_k must not be negative", nil))
	}

	results, err := h.search.Search(c.Request().Context(), req.SearchCriteria, req.TopK)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse{
		Results:         search.Results(results),
		CriteriaApplied: req.SearchCriteria,
	})
}

// Recommendations handles GET /recommendations and GET /cars/recommendations
func (h *Handler) Recommendations(c echo.Context) error {
	params := search.RecommendationParams{TopK: search.DefaultTopK}

	priceMax, err := queryFloat(c, "price_max")
	if err != nil {
		return handleError(c, err)
	}
	if priceMax == nil {
		return handleError(c, core.NewInvalidRequestError("price_max is required", nil))
	}
	params.PriceMax = *priceMax

	mpgMin, err := queryFloat(c, "mpg_min")
	if err != nil {
		return handleError(c, err)
	}
	if mpgMin != nil {
		params.MpgMin = *mpgMin
	}

	if raw := c.QueryParam("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			return handleError(c, core.NewInvalidRequestError("top_k must be an integer", err))
		}
		params.TopK = topK
	}
	if fuel := strings.TrimSpace(c.QueryParam("fuel")); fuel != "" {
		params.Fuel = &fuel
	}

	recos, err := h.search.Recommendations(c.Request().Context(), params)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, recos)
}

func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, core.NewInvalidRequestError(name+" must be a number", err)
	}
	return &f, nil
}

func normalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// handleError converts carwise errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var carwiseErr *core.CarwiseError
	if errors.As(err, &carwiseErr) {
		status := carwiseErr.HTTPStatusCode()
		if status >= http.StatusInternalServerError {
			slog.Error("request failed",
				"path", c.Request().URL.Path, "type", carwiseErr.Type, "source", carwiseErr.Source, "error", err)
		}
		return c.JSON(status, carwiseErr.ToJSON())
	}

	slog.Error("unexpected error", "path", c.Request().URL.Path, "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
